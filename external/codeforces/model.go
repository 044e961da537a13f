package codeforces

import (
	"encoding/json"
	"strconv"
)

type apiEnvelope struct {
	Status  string          `json:"status"`
	Comment string          `json:"comment"`
	Result  json.RawMessage `json:"result"`
}

type contestItem struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Phase            string `json:"phase"`
	DurationSeconds  int64  `json:"durationSeconds"`
	StartTimeSeconds *int64 `json:"startTimeSeconds"`
}

type submissionItem struct {
	Verdict string      `json:"verdict"`
	Problem problemItem `json:"problem"`
}

type problemItem struct {
	ContestID      int64  `json:"contestId"`
	ProblemsetName string `json:"problemsetName"`
	Index          string `json:"index"`
	Name           string `json:"name"`
}

func (p problemItem) key() string {
	if p.ContestID > 0 {
		return strconv.FormatInt(p.ContestID, 10) + p.Index
	}
	return p.ProblemsetName + ":" + p.Index + ":" + p.Name
}

type userItem struct {
	Handle string `json:"handle"`
	Rating int    `json:"rating"`
}
