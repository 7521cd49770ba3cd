package team

// Member is one balancing input: a roster entry with its current skill value.
type Member struct {
	PlayerID int64
	Handle   string
	Skill    int
}

// Team is a computed, unpersisted group of members.
type Team struct {
	Number   int
	Members  []Member
	SkillSum int
}

// Spread is the difference between the strongest and weakest team sums.
func Spread(teams []Team) int {
	if len(teams) == 0 {
		return 0
	}
	lo, hi := teams[0].SkillSum, teams[0].SkillSum
	for _, t := range teams[1:] {
		if t.SkillSum < lo {
			lo = t.SkillSum
		}
		if t.SkillSum > hi {
			hi = t.SkillSum
		}
	}
	return hi - lo
}
