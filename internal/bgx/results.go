package bgx

import (
	"context"
	"fmt"
	"net/url"
)

// Read-only listing calls. These are thin fetch wrappers; all rendering
// decisions live in the web layer.

func (c *Client) Championships(ctx context.Context) ([]Championship, error) {
	return getList[Championship](ctx, c, "/championships/", nil)
}

func (c *Client) Championship(ctx context.Context, id int64) (Championship, error) {
	var champ Championship
	err := c.get(ctx, fmt.Sprintf("/championships/%d/", id), nil, &champ)
	return champ, err
}

func (c *Client) Races(ctx context.Context, params url.Values) ([]Race, error) {
	return getList[Race](ctx, c, "/races/", params)
}

func (c *Client) Race(ctx context.Context, id int64) (Race, error) {
	var race Race
	err := c.get(ctx, fmt.Sprintf("/races/%d/", id), nil, &race)
	return race, err
}

func (c *Client) RaceDays(ctx context.Context, raceID int64) ([]RaceDay, error) {
	params := url.Values{"race": {fmt.Sprint(raceID)}}
	return getList[RaceDay](ctx, c, "/race-days/", params)
}

func (c *Client) RaceDayResults(ctx context.Context, raceDayID int64) ([]RaceDayResult, error) {
	params := url.Values{"race_day": {fmt.Sprint(raceDayID)}}
	return getList[RaceDayResult](ctx, c, "/results/race-day-results/", params)
}

func (c *Client) RaceResults(ctx context.Context, raceID int64, category string) ([]RaceResult, error) {
	params := url.Values{"race": {fmt.Sprint(raceID)}}
	if category != "" {
		params.Set("category", category)
	}
	return getList[RaceResult](ctx, c, "/results/race-results/", params)
}

func (c *Client) ChampionshipResults(ctx context.Context, championshipID int64) ([]ChampionshipResult, error) {
	params := url.Values{"championship": {fmt.Sprint(championshipID)}}
	return getList[ChampionshipResult](ctx, c, "/results/championship-results/", params)
}

func (c *Client) Rider(ctx context.Context, id int64) (Rider, error) {
	var rider Rider
	err := c.get(ctx, fmt.Sprintf("/riders/%d/", id), nil, &rider)
	return rider, err
}

func (c *Client) RiderResults(ctx context.Context, id int64) ([]RaceResult, error) {
	return getList[RaceResult](ctx, c, fmt.Sprintf("/riders/%d/results/", id), nil)
}

func (c *Client) RiderChampionshipResults(ctx context.Context, riderID int64) ([]ChampionshipResult, error) {
	params := url.Values{"rider": {fmt.Sprint(riderID)}}
	return getList[ChampionshipResult](ctx, c, "/results/championship-results/", params)
}
