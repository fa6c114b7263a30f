package fetchers

// weatherResponse mirrors the Open-Meteo forecast API hourly payload
type weatherResponse struct {
	Hourly struct {
		Time            []string   `json:"time"`
		Temperature     []*float64 `json:"temperature_2m"`
		Humidity        []*float64 `json:"relative_humidity_2m"`
		WindSpeed       []*float64 `json:"wind_speed_10m"`
		WindDirection   []*float64 `json:"wind_direction_10m"`
		SurfacePressure []*float64 `json:"surface_pressure"`
		Visibility      []*float64 `json:"visibility"`
		CloudCover      []*float64 `json:"cloud_cover"`
	} `json:"hourly"`
}

// airQualityResponse mirrors the Open-Meteo air quality API hourly payload
type airQualityResponse struct {
	Hourly struct {
		Time  []string   `json:"time"`
		USAQI []*float64 `json:"us_aqi"`
		PM25  []*float64 `json:"pm2_5"`
		PM10  []*float64 `json:"pm10"`
		NO2   []*float64 `json:"nitrogen_dioxide"`
		O3    []*float64 `json:"ozone"`
		SO2   []*float64 `json:"sulphur_dioxide"`
		CO    []*float64 `json:"carbon_monoxide"`
		AOD   []*float64 `json:"aerosol_optical_depth"`
	} `json:"hourly"`
}

const (
	weatherHourlyVars    = "temperature_2m,relative_humidity_2m,wind_speed_10m,wind_direction_10m,surface_pressure,visibility,cloud_cover"
	airQualityHourlyVars = "us_aqi,pm2_5,pm10,nitrogen_dioxide,ozone,sulphur_dioxide,carbon_monoxide,aerosol_optical_depth"
)
