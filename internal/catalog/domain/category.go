package domain

import "time"

type Gender string

const (
	GenderMen   Gender = "men"
	GenderWomen Gender = "women"
)

func ParseGender(v string) (Gender, bool) {
	switch Gender(v) {
	case GenderMen, GenderWomen:
		return Gender(v), true
	default:
		return "", false
	}
}

// Category nodes form a forest: ParentID is empty for roots. Cycles must not
// be creatable through parent assignment.
type Category struct {
	ID          string
	Name        string
	Description string
	Gender      Gender
	ParentID    string
	IsActive    bool
	IsDeleted   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (c Category) Visible() bool {
	return c.IsActive && !c.IsDeleted
}
