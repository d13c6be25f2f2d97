package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerSettingsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getSettings",
		Method:      http.MethodGet,
		Path:        "/api/v1/settings",
		Summary:     "Get URL settings",
		Description: "Returns the current friendly URL generation settings",
		Tags:        []string{"Settings"},
	}, s.handleGetSettings)
}

// SettingsResponse mirrors the URL settings snapshot.
type SettingsResponse struct {
	BasePath     string `json:"base_path" doc:"Base path friendly URLs live under"`
	ForceHTTPS   bool   `json:"force_https" doc:"Rewrite redirect targets to https"`
	AutoGenerate bool   `json:"auto_generate" doc:"Generate mappings from catalog events"`
	Movies       bool   `json:"movies" doc:"Friendly URLs for movies"`
	Shows        bool   `json:"shows" doc:"Friendly URLs for shows"`
	Seasons      bool   `json:"seasons" doc:"Friendly URLs for seasons"`
	Episodes     bool   `json:"episodes" doc:"Friendly URLs for episodes"`
	People       bool   `json:"people" doc:"Friendly URLs for people"`
	Collections  bool   `json:"collections" doc:"Friendly URLs for collections"`
	Genres       bool   `json:"genres" doc:"Friendly URLs for genres"`
	Studios      bool   `json:"studios" doc:"Friendly URLs for studios"`
}

// SettingsOutput wraps the settings response for Huma.
type SettingsOutput struct {
	Body SettingsResponse
}

func (s *Server) handleGetSettings(_ context.Context, _ *struct{}) (*SettingsOutput, error) {
	settings := s.mappings.Settings()

	return &SettingsOutput{
		Body: SettingsResponse{
			BasePath:     settings.BasePath,
			ForceHTTPS:   settings.ForceHTTPS,
			AutoGenerate: settings.AutoGenerate,
			Movies:       settings.Movies,
			Shows:        settings.Shows,
			Seasons:      settings.Seasons,
			Episodes:     settings.Episodes,
			People:       settings.People,
			Collections:  settings.Collections,
			Genres:       settings.Genres,
			Studios:      settings.Studios,
		},
	}, nil
}
