package models

// Category is one of the six EPA AQI severity bands
type Category struct {
	Level   int    `json:"level"`
	Name    string `json:"name"`
	Color   string `json:"color"`
	Message string `json:"message"`
}

var categories = []Category{
	{
		Level:   0,
		Name:    "Good",
		Color:   "#00E400",
		Message: "Air quality is satisfactory, and air pollution poses little or no risk.",
	},
	{
		Level:   1,
		Name:    "Moderate",
		Color:   "#FFFF00",
		Message: "Air quality is acceptable. However, there may be a risk for some people, particularly those who are unusually sensitive to air pollution.",
	},
	{
		Level:   2,
		Name:    "Unhealthy for Sensitive Groups",
		Color:   "#FF7E00",
		Message: "Members of sensitive groups may experience health effects. The general public is less likely to be affected.",
	},
	{
		Level:   3,
		Name:    "Unhealthy",
		Color:   "#FF0000",
		Message: "Some members of the general public may experience health effects; members of sensitive groups may experience more serious health effects.",
	},
	{
		Level:   4,
		Name:    "Very Unhealthy",
		Color:   "#99004C",
		Message: "Health alert: The risk of health effects is increased for everyone.",
	},
	{
		Level:   5,
		Name:    "Hazardous",
		Color:   "#7E0023",
		Message: "Health warning of emergency conditions: everyone is more likely to be affected.",
	},
}

// Band upper bounds: Good <=50, Moderate <=100, Unhealthy for Sensitive
// Groups <=150, Unhealthy <=200, Very Unhealthy <=300, Hazardous above.
var categoryBounds = []float64{50, 100, 150, 200, 300}

// CategoryFor maps a numeric AQI value to its severity band
func CategoryFor(aqi float64) Category {
	for i, bound := range categoryBounds {
		if aqi <= bound {
			return categories[i]
		}
	}
	return categories[len(categories)-1]
}

// CategoryLevel returns only the band index (0-5) for a numeric AQI value
func CategoryLevel(aqi float64) int {
	return CategoryFor(aqi).Level
}

// Categories returns all six bands in ascending severity order
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}
