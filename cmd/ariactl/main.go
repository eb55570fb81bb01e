// ariactl is the command-line companion for the assistant server: check
// health, chat, synthesize and play speech, inspect memory and settings,
// or hold a typed conversation through the full state machine.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"ariavoice/client"
	"ariavoice/core"
	"ariavoice/orchestrator"
	"ariavoice/store"
)

const usage = `usage: ariactl [flags] <command> [args]

commands:
  health              server status
  chat <message>      one text exchange
  say <text>          synthesize and play speech
  talk                typed conversation loop (one message per line)
  clear               reset the default session
  memory              show remembered facts
  settings            show or change settings
  models              list language models
  voices              list synthesis voices
  history             recent conversation log
`

func main() {
	server := cli.StringP("server", "s", "http://localhost:3000", "Server base URL")
	timeout := cli.DurationP("timeout", "t", 30*time.Second, "Request timeout")
	session := cli.String("session", "ctl", "Session id for chat commands")

	voiceFlag := cli.String("voice", "", "Voice id (say, settings)")
	speedFlag := cli.Int("speed", 0, "Speech rate offset (settings)")
	modelFlag := cli.String("model", "", "Model id (chat, settings)")
	addFlag := cli.String("add", "", "Fact to remember (memory)")
	clearFlag := cli.Bool("clear", false, "Wipe stored facts (memory)")
	limitFlag := cli.Int("limit", 20, "Entries to show (history)")
	cli.Parse()

	_ = godotenv.Load()

	args := cli.Args()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	api := client.New(client.Config{BaseURL: *server, Timeout: *timeout})
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var err error
	switch args[0] {
	case "health":
		err = runHealth(ctx, api)
	case "chat":
		err = runChat(ctx, api, strings.Join(args[1:], " "), *session, *modelFlag)
	case "say":
		err = runSay(ctx, api, strings.Join(args[1:], " "), *voiceFlag)
	case "talk":
		err = runTalk(api, *session)
	case "clear":
		err = api.Clear(ctx, *session)
	case "memory":
		err = runMemory(ctx, api, *addFlag, *clearFlag)
	case "settings":
		err = runSettings(ctx, api, *voiceFlag, *speedFlag, *modelFlag)
	case "models":
		err = runModels(ctx, api)
	case "voices":
		err = runVoices(ctx, api)
	case "history":
		err = runHistory(ctx, api, *limitFlag)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "ariactl:", err)
		os.Exit(1)
	}
}

func runHealth(ctx context.Context, api *client.Client) error {
	h, err := api.Health(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("status:  %s\n", h.Status)
	fmt.Printf("version: %s\n", h.Version)
	fmt.Printf("model:   %s\n", h.Model)
	fmt.Printf("memory:  %d facts\n", h.Memory)
	fmt.Printf("uptime:  %.0fs\n", h.Uptime)
	return nil
}

func runChat(ctx context.Context, api *client.Client, message, session, model string) error {
	if message == "" {
		return fmt.Errorf("chat: empty message")
	}
	res, err := api.Chat(ctx, message, session, model)
	if err != nil {
		return err
	}
	fmt.Println(res.Response)
	return nil
}

func runSay(ctx context.Context, api *client.Client, text, voice string) error {
	if text == "" {
		return fmt.Errorf("say: empty text")
	}
	res, err := api.Synthesize(ctx, text, voice, nil)
	if err != nil {
		return err
	}
	player := newSpeakerPlayer(api)
	return player.Play(ctx, res.AudioURL)
}

// stdinRecognizer satisfies the orchestrator's capture interface for the
// typed conversation loop; the terminal is the microphone.
type stdinRecognizer struct{}

func (stdinRecognizer) Start() error { return nil }
func (stdinRecognizer) Stop() error  { return nil }

func runTalk(api *client.Client, session string) error {
	player := newSpeakerPlayer(api)

	cfg := orchestrator.DefaultConfig()
	o := orchestrator.New(cfg, api, stdinRecognizer{}, player, nil, core.RealClock{}, nil)

	settled := make(chan orchestrator.State, 8)
	o.OnStateChange(func(s orchestrator.State) {
		if s == orchestrator.StateIdle || s == orchestrator.StateError {
			settled <- s
		}
	})

	fmt.Println("talk: type a message, ctrl-d to quit")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		o.Listen()
		o.HandleFinal(line)
		if s := <-settled; s == orchestrator.StateError {
			fmt.Fprintln(os.Stderr, "talk: request failed")
		}
	}
	return scanner.Err()
}

func runMemory(ctx context.Context, api *client.Client, add string, clear bool) error {
	if clear {
		if err := api.ClearMemory(ctx); err != nil {
			return err
		}
		fmt.Println("memory cleared")
		return nil
	}
	if add != "" {
		if err := api.AddFact(ctx, add); err != nil {
			return err
		}
		fmt.Println("remembered:", add)
		return nil
	}
	mem, err := api.Memory(ctx)
	if err != nil {
		return err
	}
	if mem.Count == 0 {
		fmt.Println("no facts stored")
		return nil
	}
	for _, fact := range mem.Facts {
		fmt.Println("-", fact)
	}
	return nil
}

func runSettings(ctx context.Context, api *client.Client, voice string, speed int, model string) error {
	var patch store.SettingsPatch
	changed := false
	if voice != "" {
		patch.Voice = &voice
		changed = true
	}
	if speed != 0 {
		patch.Speed = &speed
		changed = true
	}
	if model != "" {
		patch.Model = &model
		changed = true
	}

	var (
		settings store.Settings
		err      error
	)
	if changed {
		settings, err = api.UpdateSettings(ctx, patch)
	} else {
		settings, err = api.Settings(ctx)
	}
	if err != nil {
		return err
	}
	fmt.Printf("voice:    %s\n", settings.Voice)
	fmt.Printf("speed:    %+d%%\n", settings.Speed)
	fmt.Printf("model:    %s\n", settings.Model)
	fmt.Printf("language: %s\n", settings.Language)
	return nil
}

func runModels(ctx context.Context, api *client.Client) error {
	models, current, err := api.Models(ctx)
	if err != nil {
		return err
	}
	for _, m := range models {
		marker := "  "
		if m.ID == current {
			marker = "* "
		}
		fmt.Printf("%s%-40s %s\n", marker, m.ID, m.Name)
	}
	return nil
}

func runVoices(ctx context.Context, api *client.Client) error {
	voices, err := api.Voices(ctx)
	if err != nil {
		return err
	}
	for _, v := range voices {
		fmt.Printf("%-12s %-10s %-6s %s\n", v.ID, v.Name, v.Gender, v.Lang)
	}
	return nil
}

func runHistory(ctx context.Context, api *client.Client, limit int) error {
	entries, total, err := api.History(ctx, limit)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Printf("[%s] user: %s\n", e.Timestamp.Format(time.RFC3339), e.User)
		fmt.Printf("%*s aria: %s\n", len(time.RFC3339)+2, "", e.Assistant)
	}
	fmt.Printf("%d shown of %d total\n", len(entries), total)
	return nil
}
