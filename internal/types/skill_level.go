package types

const (
	SkillLevelBeginner     = "Beginner"
	SkillLevelIntermediate = "Intermediate"
	SkillLevelAdvanced     = "Advanced"
	SkillLevelPro          = "Pro"
)

// NormalizeSkillLevel maps anything outside the known set to Beginner.
func NormalizeSkillLevel(level string) string {
	switch level {
	case SkillLevelBeginner, SkillLevelIntermediate, SkillLevelAdvanced, SkillLevelPro:
		return level
	default:
		return SkillLevelBeginner
	}
}
