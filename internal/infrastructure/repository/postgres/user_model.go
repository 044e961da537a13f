package postgres

import "time"

type userTableModel struct {
	ID               string     `db:"id"`
	Username         string     `db:"username"`
	CodeforcesHandle *string    `db:"codeforces_handle"`
	LeetCodeHandle   *string    `db:"leetcode_handle"`
	CodeChefHandle   *string    `db:"codechef_handle"`
	SolvedCodeforces int        `db:"solved_codeforces"`
	SolvedLeetCode   int        `db:"solved_leetcode"`
	SolvedCodeChef   int        `db:"solved_codechef"`
	SolvedTotal      int        `db:"solved_total"`
	RatingCodeforces int        `db:"rating_codeforces"`
	RatingLeetCode   int        `db:"rating_leetcode"`
	RatingCodeChef   int        `db:"rating_codechef"`
	StatsUpdatedAt   *time.Time `db:"stats_updated_at"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

type userInsertModel struct {
	ID               string    `db:"id"`
	Username         string    `db:"username"`
	CodeforcesHandle *string   `db:"codeforces_handle"`
	LeetCodeHandle   *string   `db:"leetcode_handle"`
	CodeChefHandle   *string   `db:"codechef_handle"`
	SolvedCodeforces int       `db:"solved_codeforces"`
	SolvedLeetCode   int       `db:"solved_leetcode"`
	SolvedCodeChef   int       `db:"solved_codechef"`
	SolvedTotal      int       `db:"solved_total"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}
