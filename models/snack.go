package models

// Snack is one option on a couple's wheel. Active snacks are the ones placed
// on the wheel; inactive ones stay in the list but are skipped by spins.
type Snack struct {
	CoupleID      string  `dynamodbav:"coupleId" json:"coupleId"` // Partition Key (PK)
	SnackID       string  `dynamodbav:"snackId" json:"snackId"`   // Sort Key (SK)
	Name          string  `dynamodbav:"name" json:"name"`
	Price         float64 `dynamodbav:"price" json:"price"`
	Active        bool    `dynamodbav:"active" json:"active"`
	CreatedBy     string  `dynamodbav:"createdBy" json:"createdBy"`
	CreatedByName string  `dynamodbav:"createdByName,omitempty" json:"createdByName,omitempty"`
	CreatedAt     string  `dynamodbav:"createdAt" json:"createdAt"`
}

// TableName returns the DynamoDB table name for the Snack model
func (Snack) TableName() string {
	return "Snacks"
}
