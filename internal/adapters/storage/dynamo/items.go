package dynamo

type profileItem struct {
	PK                string `dynamodbav:"PK"`
	SK                string `dynamodbav:"SK"`
	ActivePetID       string `dynamodbav:"activePetId,omitempty"`
	LastDailyRewardAt *int64 `dynamodbav:"lastDailyRewardAt,omitempty"`
}

// Tiempos en milisegundos desde epoch.
type petItem struct {
	PK        string  `dynamodbav:"PK"`
	SK        string  `dynamodbav:"SK"`
	Species   string  `dynamodbav:"species"`
	Name      string  `dynamodbav:"name"`
	Hunger    float64 `dynamodbav:"hunger"`
	LastFedAt int64   `dynamodbav:"lastFedAt"`
	AdoptedAt int64   `dynamodbav:"adoptedAt"`
}

type inventoryItem struct {
	PK      string         `dynamodbav:"PK"`
	SK      string         `dynamodbav:"SK"`
	ItemMap map[string]int `dynamodbav:"itemMap"`
}

type timezoneItem struct {
	UserID          string `dynamodbav:"user_id"`
	Timezone        string `dynamodbav:"timezone"`
	DisplayLocation string `dynamodbav:"display_location"`
	UpdatedAt       int64  `dynamodbav:"updated_at"`
}
