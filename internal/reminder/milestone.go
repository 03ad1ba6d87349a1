package reminder

import "strconv"

// Milestone 距到期的提醒节点（天）
type Milestone int

// Milestones 所有有效节点，按访问顺序排列
var Milestones = []Milestone{7, 3, 2, 1, 0, -1}

// MilestoneFor 精确匹配节点，错过的天数不会补发
func MilestoneFor(daysRemaining int) (Milestone, bool) {
	for _, m := range Milestones {
		if int(m) == daysRemaining {
			return m, true
		}
	}
	return 0, false
}

func (m Milestone) String() string {
	return "day_" + strconv.Itoa(int(m))
}

// TemplateCategory 决定提醒文案的语气，不参与去重
type TemplateCategory string

const (
	TemplateSevenDays TemplateCategory = "reminder_7_days"
	TemplateThreeDays TemplateCategory = "reminder_3_days"
	TemplateOneDay    TemplateCategory = "reminder_1_day"
	TemplateExpiring  TemplateCategory = "reminder_expiring"
)

// TemplateFor 节点到模板分类：2 和 1 共用 1 天模板，0 和 -1 共用到期模板
func TemplateFor(m Milestone) TemplateCategory {
	switch {
	case m >= 7:
		return TemplateSevenDays
	case m >= 3:
		return TemplateThreeDays
	case m >= 1:
		return TemplateOneDay
	default:
		return TemplateExpiring
	}
}
