package entity

import (
	"net/http"
	"time"

	app_error "github.com/xenn00/personnel-directory/internal/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// User is a personnel record. It is terminated iff TerminationDate is set;
// records are never removed.
type User struct {
	ID              bson.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName       string        `bson:"firstName" json:"firstName"`
	LastName        string        `bson:"lastName" json:"lastName"`
	Age             int           `bson:"age" json:"age"`
	Salary          float64       `bson:"salary" json:"salary"`
	Skills          []string      `bson:"skills" json:"skills"`
	AvatarURL       *string       `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
	TerminationDate *time.Time    `bson:"terminationDate,omitempty" json:"terminationDate,omitempty"`
}

func (u *User) Terminated() bool {
	return u.TerminationDate != nil
}

// Lookup exposes the stored fields by their document names.
func (u *User) Lookup(field string) (any, bool) {
	switch field {
	case "_id":
		return u.ID, true
	case "firstName":
		return u.FirstName, true
	case "lastName":
		return u.LastName, true
	case "age":
		return u.Age, true
	case "salary":
		return u.Salary, true
	case "skills":
		return u.Skills, u.Skills != nil
	case "avatarUrl":
		if u.AvatarURL == nil {
			return nil, false
		}
		return *u.AvatarURL, true
	case "terminationDate":
		if u.TerminationDate == nil {
			return nil, false
		}
		return *u.TerminationDate, true
	}
	return nil, false
}

// UserPatch is a partial overwrite; nil fields are left untouched.
type UserPatch struct {
	FirstName       *string
	LastName        *string
	Age             *int
	Salary          *float64
	Skills          *[]string
	AvatarURL       *string
	TerminationDate *time.Time
}

func (p UserPatch) Empty() bool {
	return len(p.SetDoc()) == 0
}

// SetDoc is the $set document for the patch.
func (p UserPatch) SetDoc() bson.M {
	set := bson.M{}
	if p.FirstName != nil {
		set["firstName"] = *p.FirstName
	}
	if p.LastName != nil {
		set["lastName"] = *p.LastName
	}
	if p.Age != nil {
		set["age"] = *p.Age
	}
	if p.Salary != nil {
		set["salary"] = *p.Salary
	}
	if p.Skills != nil {
		set["skills"] = *p.Skills
	}
	if p.AvatarURL != nil {
		set["avatarUrl"] = *p.AvatarURL
	}
	if p.TerminationDate != nil {
		set["terminationDate"] = *p.TerminationDate
	}
	return set
}

// Apply mirrors SetDoc on an in-memory record.
func (p UserPatch) Apply(u *User) {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Age != nil {
		u.Age = *p.Age
	}
	if p.Salary != nil {
		u.Salary = *p.Salary
	}
	if p.Skills != nil {
		u.Skills = append([]string{}, (*p.Skills)...)
	}
	if p.AvatarURL != nil {
		url := *p.AvatarURL
		u.AvatarURL = &url
	}
	if p.TerminationDate != nil {
		at := *p.TerminationDate
		u.TerminationDate = &at
	}
}

// ParseUserID is the only place a raw id string becomes a store identifier.
func ParseUserID(raw string) (bson.ObjectID, *app_error.AppError) {
	id, err := bson.ObjectIDFromHex(raw)
	if err != nil {
		return bson.NilObjectID, app_error.NewAppError(http.StatusBadRequest, "invalid user id", app_error.FieldInvalidID)
	}
	return id, nil
}
