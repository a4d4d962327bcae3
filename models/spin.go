package models

// Spin records one wheel result so the partner's client can show who spun and
// what won. Sorted by SpunAt so recent history queries read newest first.
type Spin struct {
	CoupleID  string  `dynamodbav:"coupleId" json:"coupleId"` // Partition Key (PK)
	SpunAt    string  `dynamodbav:"spunAt" json:"spunAt"`     // Sort Key (SK), RFC3339Nano
	SpinID    string  `dynamodbav:"spinId" json:"spinId"`
	SnackName string  `dynamodbav:"snackName" json:"snackName"`
	Price     float64 `dynamodbav:"price" json:"price"`
	SpunBy    string  `dynamodbav:"spunBy" json:"spunBy"`
	SpunByName string `dynamodbav:"spunByName,omitempty" json:"spunByName,omitempty"`
}

// TableName returns the DynamoDB table name for the Spin model
func (Spin) TableName() string {
	return "Spins"
}
