package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Resource kinds shown in the guides library.
const (
	ResourceArticle   = "article"
	ResourceVideo     = "video"
	ResourceAudio     = "audio"
	ResourceWorksheet = "worksheet"
	ResourceLink      = "link"
)

// ResourceKinds is the allowed set of Resource.Kind values.
var ResourceKinds = []string{ResourceArticle, ResourceVideo, ResourceAudio, ResourceWorksheet, ResourceLink}

// DefaultResourceKind is used when no kind is given.
const DefaultResourceKind = ResourceArticle

// ValidResourceKind reports whether k is one of ResourceKinds.
func ValidResourceKind(k string) bool {
	for _, v := range ResourceKinds {
		if v == k {
			return true
		}
	}
	return false
}

// Resource is a guide in the coach-curated library.
type Resource struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title    string             `bson:"title" json:"title"`
	TitleCI  string             `bson:"title_ci" json:"-"`
	Category string             `bson:"category,omitempty" json:"category,omitempty"` // lowercase, e.g. "coping"
	Kind     string             `bson:"kind" json:"kind"`
	URL      string             `bson:"url" json:"url"`
	Summary  string             `bson:"summary,omitempty" json:"summary,omitempty"`
	Status   string             `bson:"status" json:"status"` // active or disabled

	CreatedByID primitive.ObjectID `bson:"created_by_id" json:"created_by_id"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// ResourceAssignment puts one Resource on one PIR's Guides tab.
type ResourceAssignment struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"user_id" json:"user_id"`
	ResourceID   primitive.ObjectID `bson:"resource_id" json:"resource_id"`
	AssignedByID primitive.ObjectID `bson:"assigned_by_id" json:"assigned_by_id"`
	Note         string             `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}
