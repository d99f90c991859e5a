package models

type Activity struct {
	FeedID     string `dynamodbav:"feedId" json:"-"` // Constant partition for the global feed
	CreatedAt  string `dynamodbav:"createdAt" json:"createdAt"`
	ActivityID string `dynamodbav:"activityId" json:"activityId"`
	UserID     string `dynamodbav:"userId" json:"userId"`
	Username   string `dynamodbav:"username" json:"username"`
	Type       string `dynamodbav:"type" json:"type"`
	Detail     string `dynamodbav:"detail" json:"detail"`
}

// ActivitiesTable is the DynamoDB table name for the activity feed
const ActivitiesTable = "Activities"

// GlobalFeedID is the constant partition key the global feed is read from
const GlobalFeedID = "global"

// ActivityUserIndex is the GSI used to read a single user's activities
const ActivityUserIndex = "userId-index"
