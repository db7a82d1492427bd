package models

type GroupType string

const (
	GroupTypePublic  GroupType = "public"
	GroupTypePrivate GroupType = "private"
	GroupTypeSecret  GroupType = "secret"
)

type Group struct {
	BaseModel
	Name                    string    `json:"name" gorm:"type:varchar(255);not null"`
	Description             string    `json:"description" gorm:"type:text;not null;default:''"`
	Icon                    *string   `json:"icon,omitempty" gorm:"type:text"`
	CoverPhoto              *string   `json:"coverPhoto,omitempty" gorm:"type:text"`
	Type                    GroupType `json:"type" gorm:"type:varchar(20);not null;default:'public'"`
	AllowMemberPost         bool      `json:"allowMemberPost" gorm:"not null;default:true"`
	AllowMemberCreateEvents bool      `json:"allowMemberCreateEvents" gorm:"not null;default:false"`
	Admins                  []User    `json:"admins" gorm:"many2many:group_admins"`
	Members                 []User    `json:"members" gorm:"many2many:group_members"`
}
