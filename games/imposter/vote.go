/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package imposter

// Tally counts ballots per candidate, ordered by when each candidate first
// received a vote.
func Tally(votes []Vote) []VoteCount {
	var counts []VoteCount
	index := make(map[string]int)

	for _, v := range votes {
		i, ok := index[v.TargetID]
		if !ok {
			i = len(counts)
			index[v.TargetID] = i
			counts = append(counts, VoteCount{PlayerID: v.TargetID})
		}
		counts[i].Votes++
	}

	return counts
}

// Leader returns the candidate with the most votes. Only a strictly greater
// count displaces the current leader, so ties go to whoever reached the
// count first in tally order. There is no majority requirement.
func Leader(counts []VoteCount) (string, bool) {
	best, leader := 0, ""
	for _, c := range counts {
		if c.Votes > best {
			best, leader = c.Votes, c.PlayerID
		}
	}
	return leader, leader != ""
}
