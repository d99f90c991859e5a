package models

type Notification struct {
	NotificationID string `json:"notificationId"`
	OwnerUserID    string `json:"ownerUserId"`
	Type           string `json:"type"` // match
	MatchedUserID  string `json:"matchedUserId"`
	CreatedAt      string `json:"createdAt"`
	Read           bool   `json:"read"`
}
