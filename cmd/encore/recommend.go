// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/encore/internal/app"
	"github.com/tomtom215/encore/internal/logging"
	"github.com/tomtom215/encore/internal/recommend"
	"github.com/tomtom215/encore/internal/validation"
)

func cmdRecommend() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend tracks for a playlist of seed tracks",
		Long: "Reads seed tracks from a JSON file and prints the most similar " +
			"catalog tracks. The file holds either an array of seeds or a full " +
			"request object; flags override the request's fields.",
		Example: `  encore recommend --seeds playlist.json --top-n 20 --weight energy=2 --weight tempo=0.5`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("seeds")
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read seeds: %w", err)
			}
			req, err := parseSeedsFile(data)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if err := applyRequestFlags(cmd, &req); err != nil {
				return err
			}
			if verr := validation.ValidateStruct(&req); verr != nil {
				return verr
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			c, res, err := loadCatalog(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer closeComponents(c)

			engine, err := app.NewEngine(cfg, logging.WithComponent("recommend"))
			if err != nil {
				return err
			}
			if err := engine.SetCatalog(res.Catalog, res.Index); err != nil {
				return err
			}
			resp, err := engine.Recommend(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().String("seeds", "", "JSON file with the seed tracks (required)")
	cmd.Flags().IntP("top-n", "n", 0, "Number of recommendations (default from config)")
	cmd.Flags().Int("min-popularity", 0, "Minimum candidate popularity, 0-100")
	cmd.Flags().Int("max-popularity", 100, "Maximum candidate popularity, 0-100")
	cmd.Flags().String("years", "", "Release year range FROM-TO, inclusive")
	cmd.Flags().String("profile-method", "", "Seed profile aggregation: mean or median")
	cmd.Flags().StringArrayP("weight", "w", nil, "Feature weight NAME=VALUE, repeatable")
	cmd.Flags().Bool("use-reduction", false, "Rank in PCA-reduced space")
	cmd.Flags().Int("components", 0, "PCA components when --use-reduction is set")
	_ = cmd.MarkFlagRequired("seeds")
	return cmd
}

// parseSeedsFile accepts either a bare JSON array of seeds or a request
// object.
func parseSeedsFile(data []byte) (recommend.Request, error) {
	var req recommend.Request
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return req, errors.New("seeds file is empty")
	}
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &req.Seeds); err != nil {
			return req, fmt.Errorf("decode seeds: %w", err)
		}
		return req, nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("decode request: %w", err)
	}
	return req, nil
}

// applyRequestFlags copies explicitly set flags onto the request.
func applyRequestFlags(cmd *cobra.Command, req *recommend.Request) error {
	flags := cmd.Flags()
	if flags.Changed("top-n") {
		req.TopN, _ = flags.GetInt("top-n")
	}
	if flags.Changed("min-popularity") {
		v, _ := flags.GetInt("min-popularity")
		req.MinPopularity = &v
	}
	if flags.Changed("max-popularity") {
		v, _ := flags.GetInt("max-popularity")
		req.MaxPopularity = &v
	}
	if flags.Changed("years") {
		s, _ := flags.GetString("years")
		yr, err := parseYearRange(s)
		if err != nil {
			return err
		}
		req.YearRange = yr
	}
	if flags.Changed("profile-method") {
		req.ProfileMethod, _ = flags.GetString("profile-method")
	}
	if flags.Changed("weight") {
		pairs, _ := flags.GetStringArray("weight")
		w, err := parseWeights(pairs)
		if err != nil {
			return err
		}
		if req.Weights == nil {
			req.Weights = w
		} else {
			for k, v := range w {
				req.Weights[k] = v
			}
		}
	}
	if flags.Changed("use-reduction") {
		req.UseReduction, _ = flags.GetBool("use-reduction")
	}
	if flags.Changed("components") {
		req.Components, _ = flags.GetInt("components")
	}
	return nil
}

// parseWeights parses NAME=VALUE pairs. Later pairs win.
func parseWeights(pairs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		name, raw, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("weight %q: want NAME=VALUE", p)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("weight %q: %w", p, err)
		}
		out[strings.ToLower(name)] = v
	}
	return out, nil
}

// parseYearRange parses FROM-TO. A single year selects just that year.
func parseYearRange(s string) (*recommend.YearRange, error) {
	from, to, found := strings.Cut(strings.TrimSpace(s), "-")
	lo, err := strconv.Atoi(strings.TrimSpace(from))
	if err != nil {
		return nil, fmt.Errorf("years %q: want FROM-TO", s)
	}
	hi := lo
	if found {
		if hi, err = strconv.Atoi(strings.TrimSpace(to)); err != nil {
			return nil, fmt.Errorf("years %q: want FROM-TO", s)
		}
	}
	return &recommend.YearRange{lo, hi}, nil
}
