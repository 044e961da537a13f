package memory

import (
	"github.com/riskibarqy/contest-radar/internal/domain/user"
)

// SeedUsers returns the demo leaderboard population loaded when the user store is empty.
func SeedUsers() []user.User {
	users := []user.User{
		seedUser("seed-code-master", "code_master", 150, 200, 100),
		seedUser("seed-algo-queen", "algo_queen", 250, 180, 120),
		seedUser("seed-binary-brawler", "binary_brawler", 100, 300, 50),
		seedUser("seed-java-genius", "java_genius", 50, 150, 200),
		seedUser("seed-python-pro", "python_pro", 200, 100, 150),
	}
	return users
}

func seedUser(id, username string, codeforces, leetcode, codechef int) user.User {
	counts := user.SolvedCounts{Codeforces: codeforces, LeetCode: leetcode, CodeChef: codechef}
	counts.Recompute()
	return user.User{
		ID:           id,
		Username:     username,
		SolvedCounts: counts,
	}
}
