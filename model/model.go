package model

import "github.com/cdfmlr/crud/orm"

// User is a festival-goer account.
//
// Username and Email are globally unique. A user belongs to at most one
// crew at a time (CrewID), and CrewID is never cleared once set.
type User struct {
	orm.BasicModel

	Username       string `gorm:"size:80;uniqueIndex;not null"`
	Email          string `gorm:"size:120;uniqueIndex;not null"`
	PasswordHash   string `gorm:"size:255;not null" json:"-"`
	Phone          string `gorm:"size:20"`
	ProfilePicture string `gorm:"size:255"`

	CrewID *uint `gorm:"index"`
}

// InCrew reports whether the user is a member of the crew with the given id.
func (u *User) InCrew(crewID uint) bool {
	return u != nil && u.CrewID != nil && *u.CrewID == crewID
}

// Crew is a named group of users.
type Crew struct {
	orm.BasicModel

	Name        string `gorm:"size:120;not null"`
	Photo       string `gorm:"size:255"` // a URL, not an upload
	Mp3File     string `gorm:"size:255"` // sanitized filename in the upload dir
	Description string `gorm:"type:text"`
	TrackTitle  string `gorm:"size:255"` // ID3 title of Mp3File, if any

	Members []User `gorm:"foreignKey:CrewID"`
}

// SearchMessage is a "looking for a crew" post.
type SearchMessage struct {
	orm.BasicModel

	UserID  uint   `gorm:"not null;index"`
	User    User   `gorm:"foreignKey:UserID"`
	Message string `gorm:"type:text;not null"`
}

// All returns every model, in migration order.
func All() []any {
	return []any{&Crew{}, &User{}, &SearchMessage{}}
}
