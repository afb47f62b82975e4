// Package main provides musesim, a terminal harness that drives the
// interaction core against an in-process scripted backend.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/metamuse/musecore/internal/config"
	"github.com/metamuse/musecore/internal/memory"
	"github.com/metamuse/musecore/internal/mocks"
	"github.com/metamuse/musecore/internal/muse"
	"github.com/metamuse/musecore/internal/session"
	"github.com/metamuse/musecore/internal/simapi"
)

const (
	subjectID     = "muse-demo"
	walletAddress = "0xdemo000000000000000000000000000000000001"

	simLatency = 150 * time.Millisecond
)

func main() {
	os.Exit(runMain())
}

func runMain() int {
	if os.Getenv("MUSECORE_DEBUG") == "1" {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	api := simapi.New(
		simapi.WithLatency(simLatency),
		simapi.WithMemories(seedMemories()),
	)
	wallet := mocks.NewMockWallet(walletAddress)

	controller, err := session.NewController(api, wallet,
		session.WithConfig(config.FromEnv()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create controller: %v\n", err)
		return 1
	}
	defer controller.Close()

	cache, err := memory.NewQueryCache(api, subjectID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create memory cache: %v\n", err)
		return 1
	}

	if initErr := controller.InitializeSession(ctx, subjectID); initErr != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize session: %v\n", initErr)
		return 1
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		fmt.Println("musesim: chatting with", subjectID, "(/memories, /refresh, /quit)")
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if interactive {
			fmt.Print("> ")
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case line == "/quit":
			return 0
		case line == "/memories":
			showMemories(ctx, cache)
			continue
		case line == "/refresh":
			if refreshErr := cache.Refresh(ctx); refreshErr != nil {
				fmt.Println("refresh failed:", refreshErr)
			} else {
				fmt.Println("memories refreshed,", len(cache.Results()), "loaded")
			}
			continue
		}

		if sendErr := controller.SendMessage(ctx, line); sendErr != nil {
			fmt.Println("send failed:", sendErr)
			continue
		}
		printTail(controller.Messages())
	}

	if scanErr := scanner.Err(); scanErr != nil {
		fmt.Fprintf(os.Stderr, "input error: %v\n", scanErr)
		return 1
	}
	return 0
}

// printTail shows the confirmed user/agent pair from the last exchange.
func printTail(messages []muse.Message) {
	const pair = 2
	start := len(messages) - pair
	if start < 0 {
		start = 0
	}
	for _, msg := range messages[start:] {
		fmt.Printf("[%s %s] %s\n", msg.Role, msg.VerificationStatus, msg.Content)
	}
}

func showMemories(ctx context.Context, cache *memory.QueryCache) {
	if err := cache.Query(ctx, muse.MemoryFilter{}); err != nil {
		fmt.Println("memory query failed:", err)
		return
	}
	for _, group := range cache.GroupByDate() {
		fmt.Println(group.Day.Format(time.DateOnly))
		for _, entry := range group.Entries {
			fmt.Printf("  [%s %.1f] %s\n", entry.Category, entry.Importance, entry.Content)
		}
	}
}

func seedMemories() []muse.MemoryEntry {
	now := time.Now()
	return []muse.MemoryEntry{
		mocks.NewMemoryEntryBuilder().
			WithContent("You told me you grew up near the coast").
			WithCategory(muse.CategoryPersonal).
			WithTags("childhood", "places").
			WithImportance(0.8).
			WithTimestamp(now.Add(-48 * time.Hour)).
			Build(),
		mocks.NewMemoryEntryBuilder().
			WithContent("We worked through a sonnet together").
			WithCategory(muse.CategoryCreative).
			WithTags("poetry", "collaboration").
			WithImportance(0.6).
			WithTimestamp(now.Add(-24 * time.Hour)).
			Build(),
		mocks.NewMemoryEntryBuilder().
			WithContent("You prefer short answers in the morning").
			WithCategory(muse.CategoryLearning).
			WithTags("preferences").
			WithImportance(0.7).
			WithTimestamp(now).
			Build(),
	}
}
