package models

// UserProfile defines the structure for user profiles
type UserProfile struct {
	UserID        string            `dynamodbav:"userId" json:"userId"`
	DisplayName   string            `dynamodbav:"displayName" json:"displayName"`
	PhotoRef      string            `dynamodbav:"photoRef,omitempty" json:"photoRef,omitempty"`
	Bio           string            `dynamodbav:"bio,omitempty" json:"bio,omitempty"`
	SocialLinks   map[string]string `dynamodbav:"socialLinks,omitempty" json:"socialLinks,omitempty"`
	HintsSent     int               `dynamodbav:"hintsSent" json:"hintsSent"`
	HintsReceived int               `dynamodbav:"hintsReceived" json:"hintsReceived"`
	CreatedAt     string            `dynamodbav:"createdAt" json:"createdAt"`
}

// ProfileUpdate carries the named fields a profile patch may change.
// Nil pointers mean "leave as is" - there is no blind structural merge.
type ProfileUpdate struct {
	DisplayName *string           `json:"displayName,omitempty"`
	PhotoRef    *string           `json:"photoRef,omitempty"`
	Bio         *string           `json:"bio,omitempty"`
	SocialLinks map[string]string `json:"socialLinks,omitempty"`
}

// UserProfilesTable is the DynamoDB table name for user profiles
const UserProfilesTable = "UserProfiles"
