package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

const WeatherFallback = "I couldn't fetch the weather data. Please try again later."

// WeatherClient talks to the OpenWeather current-conditions endpoint.
type WeatherClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	units      string
	log        logrus.FieldLogger
}

func NewWeatherClient(httpClient *http.Client, baseURL, apiKey, units string, log logrus.FieldLogger) *WeatherClient {
	if units == "" {
		units = "metric"
	}
	return &WeatherClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		units:      units,
		log:        log.WithField("service", "weather"),
	}
}

type weatherResponse struct {
	Main *struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// Current describes the weather in city. It never fails: any error yields
// WeatherFallback.
func (c *WeatherClient) Current(ctx context.Context, city string) string {
	report, err := c.fetch(ctx, city)
	if err != nil {
		c.log.WithError(err).WithField("city", city).Error("fetching weather")
		return WeatherFallback
	}
	return report
}

func (c *WeatherClient) fetch(ctx context.Context, city string) (string, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	q.Set("units", c.units)
	var resp weatherResponse
	if err := getJSON(ctx, c.httpClient, c.baseURL+"/data/2.5/weather?"+q.Encode(), nil, &resp); err != nil {
		return "", err
	}
	if resp.Main == nil {
		return "", errors.New("response has no main section")
	}
	if len(resp.Weather) == 0 {
		return "", errors.New("response has no weather conditions")
	}
	temp := strconv.FormatFloat(resp.Main.Temp, 'f', -1, 64)
	return fmt.Sprintf("The current temperature in %s is %s°C with %s.", city, temp, resp.Weather[0].Description), nil
}
