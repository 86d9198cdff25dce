package main

import (
	"fmt"
	"strings"

	cl "guardians/internal/cli"
	"guardians/internal/game"

	"github.com/fatih/color"
)

var (
	accent  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	warn    = color.New(color.FgYellow, color.Bold)
	danger  = color.New(color.FgRed, color.Bold)
	neutral = color.New(color.FgHiWhite)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printError(msg string) {
	danger.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func renderView(v game.View) {
	s := v.State
	accent.Printf("\n== DAY %d ==\n", s.Day)
	fmt.Printf("Coins:        %d\n", s.Coins)
	fmt.Printf("Gems:         %d\n", s.Gems)
	fmt.Printf("Stars:        %d (%d%% to next level)\n", s.Stars, s.Progress)
	fmt.Printf("Last Day:     %s\n", colorizePercent(s.Returns))
	fmt.Printf("Total Growth: %s\n", colorizePercent(v.CumulativeReturn))
	fmt.Printf("Wobbliness:   %.2f\n", s.Volatility)
	fmt.Printf("From Peak:    %s\n", colorizePercent(0 - s.Drawdown*100))

	renderWeights(v)

	fmt.Println()
	accent.Println("Today's Task")
	fmt.Printf("%s: %s\n", v.Task.Title, v.Task.Description)
	if v.Goal != nil {
		fmt.Printf("Reward: %s\n", rewardText(*v.Goal))
	}

	if v.Event != nil {
		fmt.Println()
		accent.Println("Latest News")
		fmt.Printf("%s: %s\n", v.Event.Title, v.Event.Description)
	}

	if len(s.Badges.List()) > 0 {
		fmt.Println()
		accent.Println("Badges")
		names := make([]string, 0, s.Badges.Len())
		for _, b := range s.Badges.List() {
			names = append(names, b.String())
		}
		fmt.Println(strings.Join(names, ", "))
	}

	renderPrompts(v)
	renderMessages(v)
	renderSummary(v)
	fmt.Println()
}

func renderWeights(v game.View) {
	fmt.Println()
	accent.Println("Portfolio")
	fmt.Printf("%-12s %8s %8s\n", "ASSET", "WEIGHT", "ALLOWED")
	for _, a := range game.AllAssets() {
		allowed := success.Sprint("yes")
		if !v.State.Allowed.Has(a) {
			allowed = danger.Sprint("no")
		}
		fmt.Printf("%-12s %8d %8s\n", a.String(), v.State.Weights.Get(a), allowed)
	}
	total := v.State.Weights.Total()
	line := fmt.Sprintf("%-12s %8d", "TOTAL", total)
	if total < game.MaxTotalWeight {
		warn.Printf("%s   (%d not invested)\n", line, game.MaxTotalWeight-total)
		return
	}
	fmt.Println(line)
}

func renderPrompts(v game.View) {
	if v.Dilemma != nil {
		fmt.Println()
		warn.Println("A dilemma needs your answer (guardians dilemma <n>)")
		fmt.Println(v.Dilemma.Text)
		printOptions(v.Dilemma.Options)
	}
	if v.Quiz != nil {
		fmt.Println()
		warn.Println("Quiz time! (guardians quiz <n>)")
		fmt.Println(v.Quiz.Question)
		printOptions(v.Quiz.Options)
	}
	if v.PendingEvent != nil {
		fmt.Println()
		warn.Println("Something happened. Pick what to do (guardians next --choice <n>)")
		fmt.Printf("%s: %s\n", v.PendingEvent.Title, v.PendingEvent.Description)
		labels := make([]string, 0, len(v.PendingEvent.Choices))
		for _, c := range v.PendingEvent.Choices {
			labels = append(labels, c.Label)
		}
		printOptions(labels)
	}
	if v.State.PendingCoinRequest > 0 {
		fmt.Println()
		warn.Printf("Waiting for a parent to approve %d coins.\n", v.State.PendingCoinRequest)
	}
}

func renderMessages(v game.View) {
	s := v.State
	if s.Notice != "" {
		fmt.Println()
		printInfo(s.Notice)
	}
	if s.QuizResult != "" {
		printInfo(s.QuizResult)
	}
	if s.AIEnabled && len(s.AIMessages) > 0 {
		fmt.Println()
		accent.Println(v.Personality.Name + " says")
		for _, m := range s.AIMessages {
			fmt.Println("  " + m)
		}
	}
}

func renderSummary(v game.View) {
	s := v.State
	if !s.Endgame {
		return
	}
	fmt.Println()
	if !s.ShowSummary {
		success.Println("You reached your goal! Your summary is on its way...")
		return
	}
	success.Println("== LEGACY GUARDIAN SUMMARY ==")
	fmt.Printf("Days played:    %d\n", s.Day)
	fmt.Printf("Final value:    %.2fx\n", s.PortfolioValue)
	fmt.Printf("Best value:     %.2fx\n", s.PeakValue)
	fmt.Printf("Badges earned:  %d of %d\n", s.Badges.Len(), game.NumBadges)
	fmt.Printf("Coins / Gems:   %d / %d\n", s.Coins, s.Gems)
}

func renderResult(out cl.ActionResult) {
	if !out.Outcome.Applied {
		printWarn("Nothing happened. Finish the open question first.")
	}
	if out.Outcome.EasterEgg {
		success.Println("You found an easter egg!")
	}
	if out.Outcome.Consequence != "" {
		printInfo(out.Outcome.Consequence)
	}
	for _, b := range out.Outcome.EarnedBadges {
		printSuccess("New badge: " + b.String())
	}
	renderView(out.Session)
}

func renderCoinDecision(out cl.ActionResult, approved bool) {
	if !out.Outcome.Applied {
		printWarn("There is no coin request waiting.")
		return
	}
	if approved {
		printSuccess(fmt.Sprintf("Approved. You now have %d coins.", out.Session.State.Coins))
		return
	}
	printError("Request rejected.")
}

func renderSpin(out cl.ActionResult) {
	if !out.Outcome.Applied || out.Outcome.Prize == nil {
		printWarn("The wheel has already been spun today.")
		return
	}
	success.Printf("The wheel stops on: %s\n", out.Outcome.Prize.Label)
	if out.Session.State.WheelResult != "" {
		printInfo(out.Session.State.WheelResult)
	}
}

func renderAdvisor(v game.View) {
	s := v.State
	status := danger.Sprint("off")
	if s.AIEnabled {
		status = success.Sprint("on")
	}
	fmt.Printf("Advisor: %s (%s)\n", v.Personality.Name, status)
	if s.AIResponse != "" {
		accent.Println(v.Personality.Name + ":")
		fmt.Println("  " + s.AIResponse)
	}
}

func renderLeaderboard(rows []game.GameResult) {
	accent.Println("\n== HALL OF GUARDIANS ==")
	if len(rows) == 0 {
		printInfo("No finished games yet.")
		return
	}
	fmt.Printf("%-6s %-10s %6s %10s %8s %16s\n", "RANK", "GAME", "DAYS", "VALUE", "BADGES", "FINISHED")
	for i, r := range rows {
		fmt.Printf("%-6d %-10s %6d %9.2fx %8d %16s\n",
			i+1,
			truncate(r.SessionID, 10),
			r.Days,
			r.PortfolioValue,
			r.Badges,
			r.FinishedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	fmt.Println()
}

func printOptions(options []string) {
	for i, o := range options {
		fmt.Printf("  [%d] %s\n", i, o)
	}
}

func rewardText(g game.Goal) string {
	parts := make([]string, 0, 3)
	if g.Reward.Coins > 0 {
		parts = append(parts, fmt.Sprintf("%d coins", g.Reward.Coins))
	}
	if g.Reward.Gems > 0 {
		parts = append(parts, fmt.Sprintf("%d gems", g.Reward.Gems))
	}
	if g.Reward.Badge != nil {
		parts = append(parts, g.Reward.Badge.String()+" badge")
	}
	if len(parts) == 0 {
		return "bragging rights"
	}
	return strings.Join(parts, " + ")
}

func colorizePercent(v float64) string {
	text := fmt.Sprintf("%+.2f%%", v)
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
