package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	cl "guardians/internal/cli"
	"guardians/internal/config"
	"guardians/internal/game"

	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "guardians",
		Short:        "Legacy Guardians terminal client",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&apiBase, "api", apiBase, "API base URL")

	root.AddCommand(
		newGameCmd(&apiBase),
		newShowCmd(&apiBase),
		newNextCmd(&apiBase),
		newDilemmaCmd(&apiBase),
		newQuizCmd(&apiBase),
		newWeightCmd(&apiBase),
		newToggleCmd(&apiBase),
		newCoinsCmd(&apiBase),
		newSpinCmd(&apiBase),
		newAskCmd(&apiBase),
		newAdvisorCmd(&apiBase),
		newResetCmd(&apiBase),
		newLeaderboardCmd(&apiBase),
		newEndCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

// withGame loads the saved session and runs fn against it with a bounded context.
func withGame(cmd *cobra.Command, apiBase *string, fn func(ctx context.Context, client *cl.Client, id string) error) error {
	sess, err := cl.LoadSession()
	if err != nil {
		return err
	}
	base := *apiBase
	if sess.APIBase != "" && !cmd.Flags().Changed("api") {
		base = sess.APIBase
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	return fn(ctx, newClient(&base), sess.SessionID)
}

func newGameCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Start a new game",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			view, err := newClient(apiBase).NewGame(ctx)
			if err != nil {
				return err
			}
			if err := cl.SaveSession(cl.Session{SessionID: view.SessionID, APIBase: *apiBase}); err != nil {
				return err
			}
			printSuccess("New game started. Good luck, Guardian!")
			renderView(view)
			return nil
		},
	}
}

func newShowCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:     "show",
		Short:   "Show the current game",
		Aliases: []string{"status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGame(cmd, apiBase, func(ctx context.Context, client *cl.Client, id string) error {
				view, err := client.Session(ctx, id)
				if err != nil {
					return err
				}
				renderView(view)
				return nil
			})
		},
	}
}

func newNextCmd(apiBase *string) *cobra.Command {
	var choice int
	cmd := &cobra.Command{
		Use:     "next",
		Short:   "Advance to the next day",
		Aliases: []string{"advance"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var picked *int
			if cmd.Flags().Changed("choice") {
				picked = &choice
			}
			return withGame(cmd, apiBase, func(ctx context.Context, client *cl.Client, id string) error {
				out, err := client.Advance(ctx, id, picked)
				if err != nil {
					return err
				}
				renderResult(out)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&choice, "choice", 0, "option index for an event that needs a decision")
	return cmd
}

func newDilemmaCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "dilemma <option>",
		Short: "Answer the open dilemma",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			option, err := intArg(args[0])
			if err != nil {
				return err
			}
			return withGame(cmd, apiBase, func(ctx context.Context, client *cl.Client, id string) error {
				out, err := client.AnswerDilemma(ctx, id, option)
				if err != nil {
					return err
				}
				renderResult(out)
				return nil
			})
		},
	}
}

func newQuizCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "quiz <option>",
		Short: "Answer the open quiz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			option, err := intArg(args[0])
			if err != nil {
				return err
			}
			return withGame(cmd, apiBase, func(ctx context.Context, client *cl.Client, id string) error {
				out, err := client.AnswerQuiz(ctx, id, option)
				if err != nil {
					return err
				}
				renderResult(out)
				return nil
			})
		},
	}
}

func newWeightCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "weight <asset> <value>",
		Short: "Set how much of your money goes into an asset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := intArg(args[1])
			if err != nil {
				return err
			}
			return withGame(cmd, apiBase, func(ctx context.Context, client *cl.Client, id string) error {
				out, err := client.SetWeight(ctx, id, strings.ToLower(args[0]), value)
				if err != nil {
					return err
				}
				if !out.Outcome.Applied {
					printWarn(fmt.Sprintf("Weights can add up to %d at most.", game.MaxTotalWeight))
				}
				renderWeights(out.Session)
				return nil
			})
		},
	}
}

func newToggleCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <asset>",
		Short: "Allow or block an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGame(cmd, apiBase, func(ctx context.Context, client *cl.Client, id string) error {
				out, err := client.ToggleAsset(ctx, id, strings.ToLower(args[0]))
				if err != nil {
					return err
				}
				renderWeights(out.Session)
				return nil
			})
		},
	}
}

func newCoinsCmd(apiBase *string) *cobra.Command {
	coins := &cobra.Command{
		Use:   "coins",
		Short: "Ask a parent for coins",
	}
	coins.AddCommand(
		&cobra.Command{
			Use:   "request <amount>",
			Short: "Ask for more coins",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				amount, err := intArg(args[0])
				if err != nil {
					return err
				}
				return withGame(cmd, apiBase, func(ctx context.Context, client *cl.Client, id string) error {
					out, err := client.RequestCoins(ctx, id, amount)
					if err != nil {
						return err
					}
					if !out.Outcome.Applied {
						printWarn("Request must be a positive amount.")
						return nil
					}
					printInfo(out.Session.State.Notice)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "approve",
			Short: "Approve the pending request",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withGame(cmd, apiBase, func(ctx context.Context, client *cl.Client, id string) error {
					out, err := client.ApproveCoins(ctx, id)
					if err != nil {
						return err
					}
					renderCoinDecision(out, true)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "reject",
			Short: "Reject the pending request",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withGame(cmd, apiBase, func(ctx context.Context, client *cl.Client, id string) error {
					out, err := client.RejectCoins(ctx, id)
					if err != nil {
						return err
					}
					renderCoinDecision(out, false)
					return nil
				})
			},
		},
	)
	return coins
}

func newSpinCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "spin",
		Short: "Spin the daily reward wheel",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGame(cmd, apiBase, func(ctx context.Context, client *cl.Client, id string) error {
				out, err := client.SpinWheel(ctx, id)
				if err != nil {
					return err
				}
				renderSpin(out)
				return nil
			})
		},
	}
}

func newAskCmd(apiBase *string) *cobra.Command {
	var wait time.Duration
	cmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: "Ask your advisor a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			return withGame(cmd, apiBase, func(ctx context.Context, client *cl.Client, id string) error {
				view, err := client.AskAdvisor(ctx, id, question)
				if err != nil {
					return err
				}
				printInfo(view.Personality.Name + " is thinking...")
				deadline := time.Now().Add(wait)
				for view.State.AIResponse == game.AdvisorThinking && time.Now().Before(deadline) {
					select {
					case <-ctx.Done():
						return ctx.Err()
					case <-time.After(500 * time.Millisecond):
					}
					if view, err = client.Session(ctx, id); err != nil {
						return err
					}
				}
				renderAdvisor(view)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&wait, "wait", 20*time.Second, "how long to wait for the reply")
	return cmd
}

func newAdvisorCmd(apiBase *string) *cobra.Command {
	var on, off bool
	var personality string
	cmd := &cobra.Command{
		Use:   "advisor",
		Short: "Turn the advisor on or off, or pick a personality",
		RunE: func(cmd *cobra.Command, args []string) error {
			if on && off {
				return errors.New("pick only one of --on and --off")
			}
			var enabled *bool
			if on || off {
				enabled = &on
			}
			var p *string
			if cmd.Flags().Changed("personality") {
				p = &personality
			}
			return withGame(cmd, apiBase, func(ctx context.Context, client *cl.Client, id string) error {
				out, err := client.ConfigureAdvisor(ctx, id, enabled, p)
				if err != nil {
					return err
				}
				if p != nil && !out.Outcome.Applied {
					printWarn("Unknown personality.")
				}
				renderAdvisor(out.Session)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&on, "on", false, "enable the advisor")
	cmd.Flags().BoolVar(&off, "off", false, "disable the advisor")
	cmd.Flags().StringVar(&personality, "personality", "", "advisor personality id")
	return cmd
}

func newResetCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Start the current game over",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGame(cmd, apiBase, func(ctx context.Context, client *cl.Client, id string) error {
				out, err := client.Reset(ctx, id)
				if err != nil {
					return err
				}
				printSuccess("Game reset.")
				renderView(out.Session)
				return nil
			})
		},
	}
}

func newLeaderboardCmd(apiBase *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the best finished games",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			rows, err := newClient(apiBase).Leaderboard(ctx, limit)
			if err != nil {
				return err
			}
			renderLeaderboard(rows)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "rows to show")
	return cmd
}

func newEndCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:     "end",
		Short:   "End the current game and forget it",
		Aliases: []string{"quit"},
		RunE: func(cmd *cobra.Command, args []string) error {
			err := withGame(cmd, apiBase, func(ctx context.Context, client *cl.Client, id string) error {
				return client.EndGame(ctx, id)
			})
			if err != nil {
				printWarn(fmt.Sprintf("Server did not end the game: %v", err))
			}
			if err := cl.ClearSession(); err != nil {
				return err
			}
			printSuccess("Game ended.")
			return nil
		},
	}
}

func intArg(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return v, nil
}
