package warehouse

import (
	"context"
	"fmt"

	"ops-warehouse/internal/database"
)

type ServiceSeed struct {
	Name string
	Tier string
}

type TeamSeed struct {
	Name   string
	Region string
}

type AgentSeed struct {
	Name     string
	TeamName string
}

type CustomerSeed struct {
	Name    string
	Segment string
	Country string
}

type ProductSeed struct {
	Name      string
	Category  string
	UnitPrice float64
}

type SeedSet struct {
	Services  []ServiceSeed
	Teams     []TeamSeed
	Agents    []AgentSeed
	Customers []CustomerSeed
	Products  []ProductSeed
}

// DefaultSeed is the hand-authored reference data loaded once per fresh
// database. Surrogate ids are engine-assigned; agents resolve their team by
// name after the teams exist.
func DefaultSeed() SeedSet {
	return SeedSet{
		Services: []ServiceSeed{
			{Name: "Payments", Tier: "critical"},
			{Name: "Core", Tier: "critical"},
			{Name: "Storefront", Tier: "standard"},
			{Name: "Notifications", Tier: "standard"},
			{Name: "Reporting", Tier: "internal"},
		},
		Teams: []TeamSeed{
			{Name: "Ops North", Region: "EMEA"},
			{Name: "Canada", Region: "AMER"},
			{Name: "Nightwatch", Region: "APAC"},
		},
		Agents: []AgentSeed{
			{Name: "Alex Chen", TeamName: "Ops North"},
			{Name: "Brigitte Moreau", TeamName: "Ops North"},
			{Name: "Carlos Ferreira", TeamName: "Canada"},
			{Name: "Dana Whitfield", TeamName: "Canada"},
			{Name: "Emre Yilmaz", TeamName: "Nightwatch"},
			{Name: "Farah Osman", TeamName: "Nightwatch"},
		},
		Customers: []CustomerSeed{
			{Name: "Acme Retail", Segment: "enterprise", Country: "DE"},
			{Name: "Borealis Labs", Segment: "enterprise", Country: "CA"},
			{Name: "Cobalt Goods", Segment: "smb", Country: "US"},
			{Name: "Dune Supply Co", Segment: "smb", Country: "AE"},
			{Name: "Evergreen Books", Segment: "smb", Country: "UK"},
			{Name: "Fjord Outdoor", Segment: "mid-market", Country: "NO"},
			{Name: "Giro Cycles", Segment: "mid-market", Country: "IT"},
			{Name: "Harbor Foods", Segment: "enterprise", Country: "US"},
			{Name: "Iris Optics", Segment: "smb", Country: "JP"},
			{Name: "Juniper Home", Segment: "mid-market", Country: "SE"},
		},
		Products: []ProductSeed{
			{Name: "Standard Plan", Category: "subscription", UnitPrice: 29.00},
			{Name: "Pro Plan", Category: "subscription", UnitPrice: 99.00},
			{Name: "Enterprise Plan", Category: "subscription", UnitPrice: 499.00},
			{Name: "Onboarding Package", Category: "services", UnitPrice: 1500.00},
			{Name: "Priority Support", Category: "services", UnitPrice: 250.00},
			{Name: "API Credits 10k", Category: "usage", UnitPrice: 45.00},
			{Name: "API Credits 100k", Category: "usage", UnitPrice: 360.00},
			{Name: "Storage 1TB", Category: "usage", UnitPrice: 80.00},
			{Name: "Audit Report", Category: "services", UnitPrice: 600.00},
			{Name: "Training Seat", Category: "services", UnitPrice: 120.00},
			{Name: "SSO Add-on", Category: "subscription", UnitPrice: 75.00},
			{Name: "Sandbox Environment", Category: "usage", UnitPrice: 55.00},
		},
	}
}

// SeedDimensions inserts the reference rows, teams before the agents that
// reference them. Re-running against a seeded database fails on the first
// duplicate unique name; nothing is overwritten.
func SeedDimensions(ctx context.Context, db database.Driver, set SeedSet) error {
	for _, s := range set.Services {
		if err := db.ExecContext(ctx, "INSERT INTO dim_service (name, tier) VALUES (?, ?)", s.Name, s.Tier); err != nil {
			return fmt.Errorf("seed service %q: %w", s.Name, err)
		}
	}

	for _, t := range set.Teams {
		if err := db.ExecContext(ctx, "INSERT INTO dim_team (name, region) VALUES (?, ?)", t.Name, t.Region); err != nil {
			return fmt.Errorf("seed team %q: %w", t.Name, err)
		}
	}

	for _, a := range set.Agents {
		var teamID int64
		if err := db.QueryRowContext(ctx, "SELECT team_id FROM dim_team WHERE name = ?", a.TeamName).Scan(&teamID); err != nil {
			return fmt.Errorf("resolve team %q for agent %q: %w", a.TeamName, a.Name, err)
		}
		if err := db.ExecContext(ctx, "INSERT INTO dim_agent (name, team_id) VALUES (?, ?)", a.Name, teamID); err != nil {
			return fmt.Errorf("seed agent %q: %w", a.Name, err)
		}
	}

	for _, c := range set.Customers {
		if err := db.ExecContext(ctx, "INSERT INTO dim_customer (name, segment, country) VALUES (?, ?, ?)", c.Name, c.Segment, c.Country); err != nil {
			return fmt.Errorf("seed customer %q: %w", c.Name, err)
		}
	}

	for _, p := range set.Products {
		if err := db.ExecContext(ctx, "INSERT INTO dim_product (name, category, unit_price) VALUES (?, ?, ?)", p.Name, p.Category, p.UnitPrice); err != nil {
			return fmt.Errorf("seed product %q: %w", p.Name, err)
		}
	}

	return nil
}
