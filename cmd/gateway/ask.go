package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nestmind/apps/gateway/internal/app"
	"nestmind/apps/gateway/internal/config"
	"nestmind/apps/gateway/internal/domain"
)

type askOptions struct {
	agent      string
	name       string
	university string
	country    string
	budget     string
	major      string
	year       string
	visa       string
	income     float64
	hasIncome  bool
}

func newAskCmd() *cobra.Command {
	var opts askOptions
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask one agent a single question and print the JSON response",
		Example: `  gateway ask --agent housing --university "Ohio State" --budget 900 "where should I live?"
  gateway ask --agent food "cheap late night food?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			configureLogging(cfg.LogLevel, logFormat)
			// no heartbeat for a single question
			cfg.HeartbeatCron = ""

			srv, err := app.NewServer(cfg)
			if err != nil {
				return err
			}
			defer srv.Close()

			opts.hasIncome = cmd.Flags().Changed("income")
			req := opts.request(strings.Join(args, " "))
			out, err := json.MarshalIndent(srv.Agents().Handle(cmd.Context(), req), "", "  ")
			if err != nil {
				return fmt.Errorf("encode response: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.agent, "agent", string(domain.AgentGeneral), "agent kind: housing, budget, guide, career, buddy, campus, food or chat")
	flags.StringVar(&opts.name, "name", "", "student name")
	flags.StringVar(&opts.university, "university", "", "student university")
	flags.StringVar(&opts.country, "country", "", "student home country")
	flags.StringVar(&opts.budget, "budget", "", "monthly housing budget")
	flags.StringVar(&opts.major, "major", "", "student major")
	flags.StringVar(&opts.year, "year", "", "student year")
	flags.StringVar(&opts.visa, "visa", "", "visa status")
	flags.Float64Var(&opts.income, "income", 0, "monthly income for the budget agent")
	return cmd
}

// request maps the flags onto the request shape of the selected agent.
func (o askOptions) request(question string) domain.AgentRequest {
	query := domain.Text(question)
	kind := domain.ParseAgentKind(o.agent)
	switch kind {
	case domain.AgentHousing:
		return domain.AgentRequest{Kind: kind, Housing: domain.HousingRequest{
			Query: query, University: domain.Text(o.university), Budget: domain.Text(o.budget),
		}}
	case domain.AgentBudget:
		req := domain.BudgetRequest{Query: query}
		if o.hasIncome {
			income := o.income
			req.Income = &income
		}
		return domain.AgentRequest{Kind: kind, Budget: req}
	case domain.AgentGuide:
		return domain.AgentRequest{Kind: kind, Guide: domain.GuideRequest{
			Query: query, University: domain.Text(o.university), StudentCountry: domain.Text(o.country),
		}}
	case domain.AgentCareer:
		return domain.AgentRequest{Kind: kind, Career: domain.CareerRequest{
			Query: query, Major: domain.Text(o.major), Year: domain.Text(o.year), VisaStatus: domain.Text(o.visa),
		}}
	}
	return domain.ChatAgentRequest(domain.ChatRequest{
		Query: query,
		Agent: string(kind),
		Profile: domain.StudentProfile{
			Name:       domain.Text(o.name),
			University: domain.Text(o.university),
			Country:    domain.Text(o.country),
			Major:      domain.Text(o.major),
			Year:       domain.Text(o.year),
		},
	})
}
