package leetcode

import "encoding/json"

const upcomingContestsQuery = `query upcomingContests {
  upcomingContests {
    title
    titleSlug
    startTime
    duration
  }
}`

const userProfileQuery = `query getUserProfile($username: String!) {
  matchedUser(username: $username) {
    submitStats: submitStatsGlobal {
      acSubmissionNum {
        difficulty
        count
      }
    }
  }
  userContestRanking(username: $username) {
    rating
  }
}`

type graphQLRequest struct {
	OperationName string         `json:"operationName,omitempty"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type graphQLEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type upcomingContestsData struct {
	UpcomingContests []contestItem `json:"upcomingContests"`
}

type contestItem struct {
	Title     string `json:"title"`
	TitleSlug string `json:"titleSlug"`
	StartTime int64  `json:"startTime"`
	Duration  int64  `json:"duration"`
}

type userProfileData struct {
	MatchedUser        *matchedUser    `json:"matchedUser"`
	UserContestRanking *contestRanking `json:"userContestRanking"`
}

type matchedUser struct {
	SubmitStats struct {
		AcSubmissionNum []difficultyCount `json:"acSubmissionNum"`
	} `json:"submitStats"`
}

type difficultyCount struct {
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
}

type contestRanking struct {
	Rating float64 `json:"rating"`
}

type profile struct {
	Solved int
	Rating int
}
