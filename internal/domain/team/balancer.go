package team

import (
	"container/heap"
	"errors"
	"fmt"
	"sort"
)

var ErrInsufficientPlayers = errors.New("insufficient players")

// Balance partitions members into teamCount teams with a greedy
// lightest-bucket fill. Members are taken by skill descending, ties keeping
// the input (join) order, and each goes to the team with the lowest running
// sum, ties going to the lowest team number. The result is deterministic for
// identical input.
func Balance(members []Member, teamCount int) ([]Team, error) {
	if teamCount < 1 {
		return nil, fmt.Errorf("%w: team count must be at least 1, got %d", ErrInsufficientPlayers, teamCount)
	}
	if len(members) < teamCount {
		return nil, fmt.Errorf("%w: need at least %d players for %d teams, got %d", ErrInsufficientPlayers, teamCount, teamCount, len(members))
	}

	ordered := append([]Member(nil), members...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Skill > ordered[j].Skill
	})

	teams := make([]Team, teamCount)
	buckets := make(bucketHeap, teamCount)
	for i := range teams {
		teams[i] = Team{Number: i + 1, Members: make([]Member, 0, len(members)/teamCount+1)}
		buckets[i] = bucket{index: i}
	}
	heap.Init(&buckets)

	for _, m := range ordered {
		lightest := buckets[0]
		teams[lightest.index].Members = append(teams[lightest.index].Members, m)
		teams[lightest.index].SkillSum += m.Skill
		buckets[0].sum = teams[lightest.index].SkillSum
		heap.Fix(&buckets, 0)
	}

	return teams, nil
}

type bucket struct {
	index int
	sum   int
}

type bucketHeap []bucket

func (h bucketHeap) Len() int { return len(h) }

func (h bucketHeap) Less(i, j int) bool {
	if h[i].sum != h[j].sum {
		return h[i].sum < h[j].sum
	}
	return h[i].index < h[j].index
}

func (h bucketHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *bucketHeap) Push(x any) { *h = append(*h, x.(bucket)) }

func (h *bucketHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
