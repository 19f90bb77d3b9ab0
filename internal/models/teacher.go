package models

// Teacher represents an account in the teachers collection. The document is
// keyed by username; the service only ever checks for its presence.
type Teacher struct {
	Username    string `bson:"_id" json:"username"`
	DisplayName string `bson:"display_name,omitempty" json:"display_name,omitempty"`
}
