package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/okian/relief/internal/domain/types"
)

// errMissingEmergency mirrors the API's handling of a body without an emergency.
var errMissingEmergency = errors.New("request has no emergency")

type matchOptions struct {
	profile string
	topK    int
	asJSON  bool
}

func newMatchCmd(root *rootOptions) *cobra.Command {
	opts := &matchOptions{}
	cmd := &cobra.Command{
		Use:   "match <request.json|request.yaml|->",
		Short: "Rank the volunteers of a request file offline",
		Long: "Reads a match request in the same shape the API accepts, JSON or YAML, " +
			"and prints the ranked recommendations.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd, root, opts, args[0])
		},
	}
	cmd.Flags().StringVarP(&opts.profile, "profile", "p", "", "matching profile (default from config)")
	cmd.Flags().IntVarP(&opts.topK, "top-k", "k", 0, "override the profile's list length")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the raw JSON response")
	return cmd
}

func runMatch(cmd *cobra.Command, root *rootOptions, opts *matchOptions, path string) error {
	ctx := cmd.Context()
	cfg, err := root.loadConfig(ctx, "warn")
	if err != nil {
		return err
	}
	data, err := readInput(cmd, path)
	if err != nil {
		return err
	}
	req, err := decodeMatchRequest(path, data)
	if err != nil {
		return err
	}
	if _, ok := req.EmergencyPayload(); !ok {
		return errMissingEmergency
	}
	if opts.profile != "" {
		req.Profile = opts.profile
	}
	if opts.topK > 0 {
		req.TopK = &opts.topK
	}

	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()

	resp, err := svc.Match(ctx, req.Profile, req.ToMatching(), req.Overrides())
	if err != nil {
		return err
	}
	if opts.asJSON {
		return writeIndentedJSON(cmd.OutOrStdout(), resp)
	}
	renderMatch(cmd.OutOrStdout(), resp)
	return nil
}

// decodeMatchRequest accepts JSON, or YAML by extension. YAML is converted
// through a generic tree so the JSON field names apply to both.
func decodeMatchRequest(path string, data []byte) (types.MatchRequest, error) {
	var req types.MatchRequest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var tree any
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return req, fmt.Errorf("parse yaml: %w", err)
		}
		raw, err := json.Marshal(tree)
		if err != nil {
			return req, fmt.Errorf("convert yaml: %w", err)
		}
		data = raw
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("parse request: %w", err)
	}
	return req, nil
}

func renderMatch(w io.Writer, resp types.MatchResponse) {
	fmt.Fprintf(w, "profile %s, %s emergency, %s priority: %d considered, %d skipped\n",
		resp.Profile, resp.EmergencyType, resp.Priority, resp.Considered, resp.Skipped)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Rank", "Volunteer", "Name", "Score", "Confidence", "Skills", "Distance", "ETA"})
	for _, r := range resp.Recommendations {
		t.AppendRow(table.Row{
			r.Position, r.Rank, r.VolunteerID, r.Name,
			fmt.Sprintf("%.3f", r.Score), fmt.Sprintf("%.2f", r.Confidence),
			fmt.Sprintf("%d%% %s", r.SkillMatchPercentage, strings.Join(r.SkillMatches, ",")),
			r.Distance, r.EstimatedArrival,
		})
	}
	t.Render()

	if len(resp.Warnings) == 0 {
		return
	}
	wt := table.NewWriter()
	wt.SetOutputMirror(w)
	wt.AppendHeader(table.Row{"Index", "Volunteer", "Reason"})
	for _, warn := range resp.Warnings {
		wt.AppendRow(table.Row{warn.Index, warn.VolunteerID, warn.Reason})
	}
	wt.Render()
}

func writeIndentedJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
