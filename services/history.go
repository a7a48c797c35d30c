package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"tripwindow/database"
	"tripwindow/planner"
)

// RequestFromSearch rebuilds the plan request a stored search was made with.
func RequestFromSearch(s *database.Search) (PlanRequest, error) {
	start, err := planner.ParseDate(s.StartDate)
	if err != nil {
		return PlanRequest{}, fmt.Errorf("search %s: %w", s.ID, err)
	}
	end, err := planner.ParseDate(s.EndDate)
	if err != nil {
		return PlanRequest{}, fmt.Errorf("search %s: %w", s.ID, err)
	}
	return PlanRequest{
		Origin:      s.Origin,
		Destination: s.Destination,
		Place:       s.Place,
		StartDate:   start,
		EndDate:     end,
		Policy:      s.Policy,
		TopN:        s.TopN,
		Dedupe:      s.Dedupe,
	}, nil
}

// SearchFromRequest is the row stored for a normalized request.
func SearchFromRequest(req PlanRequest, watch bool) *database.Search {
	return &database.Search{
		ID:          uuid.New().String(),
		Origin:      req.Origin,
		Destination: req.Destination,
		Place:       req.Place,
		StartDate:   planner.DateKey(req.StartDate),
		EndDate:     planner.DateKey(req.EndDate),
		Policy:      req.Policy,
		TopN:        req.TopN,
		Dedupe:      req.Dedupe,
		Watch:       watch,
	}
}

// SavePlanResult stores res as a new plan row of searchID.
func SavePlanResult(searchID string, res *PlanResult) (*database.Plan, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("encode plan: %w", err)
	}
	p := &database.Plan{
		ID:         uuid.New().String(),
		SearchID:   searchID,
		Source:     res.Source,
		ResultJSON: string(data),
	}
	if err := database.SavePlan(p); err != nil {
		return nil, fmt.Errorf("save plan: %w", err)
	}
	return p, nil
}

// DecodePlan returns the result stored in p.
func DecodePlan(p *database.Plan) (*PlanResult, error) {
	var res PlanResult
	if err := json.Unmarshal([]byte(p.ResultJSON), &res); err != nil {
		return nil, fmt.Errorf("decode plan %s: %w", p.ID, err)
	}
	return &res, nil
}

// Replan runs a stored search again and stores the new result.
func (p *TripPlanner) Replan(ctx context.Context, s *database.Search) (*database.Plan, error) {
	req, err := RequestFromSearch(s)
	if err != nil {
		return nil, err
	}
	res, err := p.Plan(ctx, req)
	if err != nil {
		return nil, err
	}
	return SavePlanResult(s.ID, res)
}
