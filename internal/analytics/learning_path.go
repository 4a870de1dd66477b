package analytics

import (
	"cmp"
	"slices"

	"interview_prep_backend/internal/model"
)

const generalImprovement = "general improvement"

var practiceExercises = []string{
	"Answer two mock interview questions out loud every day",
	"Rewrite one past answer using the STAR method",
	"Solve a timed technical problem and explain your reasoning",
	"Record yourself and review pacing and filler words",
}

var timeToTarget = map[model.ProficiencyLevel]string{
	model.LevelBeginner:     "4-6 weeks",
	model.LevelIntermediate: "6-8 weeks",
	model.LevelAdvanced:     "8-12 weeks",
}

// LevelFor maps an average score onto a proficiency level.
func LevelFor(averageScore int) model.ProficiencyLevel {
	switch {
	case averageScore < 60:
		return model.LevelBeginner
	case averageScore < 80:
		return model.LevelIntermediate
	default:
		return model.LevelAdvanced
	}
}

// NextLevel returns the target one step above. Expert is terminal.
func NextLevel(l model.ProficiencyLevel) model.ProficiencyLevel {
	switch l {
	case model.LevelBeginner:
		return model.LevelIntermediate
	case model.LevelIntermediate:
		return model.LevelAdvanced
	default:
		return model.LevelExpert
	}
}

// GeneratePath builds a learning path from an average score and a skill
// breakdown. Skills without samples are not focus candidates; an answered
// skill scoring 0 is.
func GeneratePath(averageScore int, b model.SkillBreakdown) model.LearningPath {
	current := LevelFor(averageScore)

	type candidate struct {
		skill model.Skill
		score int
	}
	var weak []candidate
	for _, s := range model.Skills {
		if sc := b.Get(s); sc.Samples > 0 && sc.Score < 75 {
			weak = append(weak, candidate{s, sc.Score})
		}
	}
	// stable sort keeps model.Skills order on ties
	slices.SortStableFunc(weak, func(a, b candidate) int { return cmp.Compare(a.score, b.score) })

	focus := make([]string, 0, focusAreaCap)
	for _, c := range weak {
		if len(focus) == focusAreaCap {
			break
		}
		focus = append(focus, string(c.skill))
	}
	if len(focus) == 0 {
		focus = append(focus, generalImprovement)
	}

	return model.LearningPath{
		CurrentLevel:          current,
		TargetLevel:           NextLevel(current),
		EstimatedTimeToTarget: timeToTarget[current],
		FocusAreas:            focus,
		PracticeExercises:     slices.Clone(practiceExercises),
	}
}
