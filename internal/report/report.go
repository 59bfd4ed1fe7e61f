package report

import (
	"driver-route-planner/internal/report/dto"
	"driver-route-planner/internal/services"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Convert a planning result to its response form.
func NewPlanResponse(res *services.Result) dto.PlanResponse {
	resp := dto.PlanResponse{
		RunID:      res.RunID,
		Engine:     res.Engine,
		Status:     string(res.Status),
		Cached:     res.Cached,
		Routes:     []dto.RouteResponse{},
		Unassigned: res.UnassignedIDs(),
		Warnings:   res.Warnings,
		ElapsedMS:  res.Elapsed.Milliseconds(),
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}

	if !res.HasSolution {
		return resp
	}

	s := res.Solution
	resp.Cost = s.Cost
	resp.NumDrivers = s.NumDrivers
	resp.Valid = s.Valid
	for _, r := range s.Routes {
		resp.Routes = append(resp.Routes, dto.RouteResponse{
			LoadIDs: r.LoadIDs(),
			Time:    r.Time,
			Valid:   r.Valid,
		})
	}

	return resp
}

// Write renders res in the given format.
//
// The text format prints one route per line as [id,id,...]. When verbose is
// set it adds a summary line and any warnings or unassigned loads.
func Write(w io.Writer, res *services.Result, format string, verbose bool) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, res)
	case FormatText, "":
		return WriteText(w, res, verbose)
	default:
		return fmt.Errorf("report: unknown format %q", format)
	}
}

func WriteJSON(w io.Writer, res *services.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewPlanResponse(res)); err != nil {
		return fmt.Errorf("report: encode json: %w", err)
	}
	return nil
}

func WriteText(w io.Writer, res *services.Result, verbose bool) error {
	var b strings.Builder

	if res.HasSolution {
		for _, r := range res.Solution.Routes {
			b.WriteString(r.String())
			b.WriteByte('\n')
		}
	}

	if verbose {
		s := res.Solution
		fmt.Fprintf(&b, "# engine=%s status=%s drivers=%d cost=%.2f valid=%t\n",
			res.Engine, res.Status, s.NumDrivers, s.Cost, s.Valid)
		if len(res.Unassigned) > 0 {
			fmt.Fprintf(&b, "# unassigned=%v\n", res.UnassignedIDs())
		}
		for _, warn := range res.Warnings {
			fmt.Fprintf(&b, "# warning: %s\n", warn)
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("report: write text: %w", err)
	}
	return nil
}
