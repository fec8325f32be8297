package main

import (
	"veridex/internal/evidence/adapters"
	"veridex/internal/platform/config"
)

// buildStages assembles the adapter groups for in-process runs. The CLI
// talks to the sources directly; caching belongs to the server deployment.
func buildStages(cfg config.Server) (stageOne, stageTwo []adapters.Group) {
	if cfg.RegistryURL != "" {
		stageOne = append(stageOne, adapters.PrimaryOnly(adapters.NewRegistryAdapter(cfg.RegistryURL, cfg.AdapterTimeout)))
	}
	if cfg.LicenseURL != "" {
		stageOne = append(stageOne, adapters.PrimaryOnly(adapters.NewLicenseAdapter(cfg.LicenseURL, cfg.AdapterTimeout)))
	}
	if cfg.GeocodeURL != "" {
		stageTwo = append(stageTwo, adapters.PrimaryOnly(adapters.NewGeocodeAdapter(cfg.GeocodeURL, cfg.AdapterTimeout)))
	}
	if cfg.ListingSearchURL != "" {
		primary := adapters.NewListingSearchAdapter(cfg.ListingSearchURL, cfg.AdapterTimeout)
		if cfg.WebSearchURL != "" {
			stageTwo = append(stageTwo, adapters.WithFallback(primary, adapters.NewWebSearchAdapter(cfg.WebSearchURL, cfg.AdapterTimeout)))
		} else {
			stageTwo = append(stageTwo, adapters.PrimaryOnly(primary))
		}
	} else if cfg.WebSearchURL != "" {
		stageTwo = append(stageTwo, adapters.PrimaryOnly(adapters.NewWebSearchAdapter(cfg.WebSearchURL, cfg.AdapterTimeout)))
	}
	return stageOne, stageTwo
}
