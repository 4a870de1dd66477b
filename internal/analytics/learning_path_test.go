package analytics

import (
	"testing"

	"interview_prep_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestGeneratePath_Levels(t *testing.T) {
	tests := []struct {
		avg     int
		current model.ProficiencyLevel
		target  model.ProficiencyLevel
		eta     string
	}{
		{0, model.LevelBeginner, model.LevelIntermediate, "4-6 weeks"},
		{55, model.LevelBeginner, model.LevelIntermediate, "4-6 weeks"},
		{60, model.LevelIntermediate, model.LevelAdvanced, "6-8 weeks"},
		{79, model.LevelIntermediate, model.LevelAdvanced, "6-8 weeks"},
		{80, model.LevelAdvanced, model.LevelExpert, "8-12 weeks"},
		{100, model.LevelAdvanced, model.LevelExpert, "8-12 weeks"},
	}
	for _, tt := range tests {
		p := GeneratePath(tt.avg, model.SkillBreakdown{})
		assert.Equal(t, tt.current, p.CurrentLevel, "avg %d", tt.avg)
		assert.Equal(t, tt.target, p.TargetLevel, "avg %d", tt.avg)
		assert.Equal(t, tt.eta, p.EstimatedTimeToTarget, "avg %d", tt.avg)
	}
}

func TestGeneratePath_FocusAreas(t *testing.T) {
	var b model.SkillBreakdown
	b.Set(model.SkillTechnical, model.SkillScore{Score: 72, Samples: 1})
	b.Set(model.SkillCommunication, model.SkillScore{Score: 58, Samples: 1})
	b.Set(model.SkillBehavioral, model.SkillScore{Score: 72, Samples: 1})

	p := GeneratePath(65, b)
	assert.Equal(t, []string{"communication", "technical", "behavioral"}, p.FocusAreas)
	assert.NotEmpty(t, p.PracticeExercises)

	b.Set(model.SkillCommunication, model.SkillScore{Score: 90, Samples: 1})
	b.Set(model.SkillTechnical, model.SkillScore{Score: 75, Samples: 1})
	b.Set(model.SkillBehavioral, model.SkillScore{Score: 88, Samples: 1})
	assert.Equal(t, []string{"general improvement"}, GeneratePath(85, b).FocusAreas)
}

func TestGeneratePath_SamplesDecideFocus(t *testing.T) {
	tests := []struct {
		name    string
		samples int
		want    []string
	}{
		{"no answers", 0, []string{"general improvement"}},
		{"answered with zero", 2, []string{"technical", "communication", "behavioral"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b model.SkillBreakdown
			for _, s := range model.Skills {
				b.Set(s, model.SkillScore{Score: 0, Samples: tt.samples})
			}
			assert.Equal(t, tt.want, GeneratePath(0, b).FocusAreas)
		})
	}
}
