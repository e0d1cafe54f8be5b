package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"group-planner/internal/config"
	"group-planner/internal/handler"
	"group-planner/internal/models"
	"group-planner/internal/notify"
	"group-planner/internal/oracle"
	"group-planner/internal/planner"
	"group-planner/internal/questions"
	"group-planner/internal/storage"
	"group-planner/internal/whatsapp"
)

func main() {
	fmt.Println("🗓  Group Activity Planner")
	fmt.Println("==========================")

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	store, err := openStore(cfg)
	if err != nil {
		fmt.Printf("Error initializing storage: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	catalog := questions.Default()
	if cfg.QuestionsFile != "" {
		catalog, err = questions.LoadFile(cfg.QuestionsFile)
		if err != nil {
			fmt.Printf("Error loading questions: %v\n", err)
			os.Exit(1)
		}
	}

	// Email and voice have no wired transport; their sends go to the console
	router := notify.NewRouter()
	router.Register(models.ChannelEmail, notify.NewConsole(models.ChannelEmail, logger))
	router.Register(models.ChannelVoice, notify.NewConsole(models.ChannelVoice, logger))

	var whatsappService *whatsapp.Service
	if cfg.WhatsAppEnabled {
		whatsappService, err = whatsapp.NewService(&whatsapp.Config{DataDir: cfg.DataDir})
		if err != nil {
			fmt.Printf("Error initializing WhatsApp service: %v\n", err)
			os.Exit(1)
		}
		router.Register(models.ChannelSMS, whatsappService)
	} else {
		router.Register(models.ChannelSMS, notify.NewConsole(models.ChannelSMS, logger))
	}

	engine := planner.New(store, router, oracle.NewHeuristic(), planner.Config{
		Questions:             catalog,
		ContinuationThreshold: cfg.ContinuationThreshold,
		Logger:                logger,
	})

	if whatsappService != nil {
		inbound := handler.NewInbound(engine, logger)
		whatsappService.SetMessageHandler(inbound.HandleMessage)

		fmt.Println("Connecting to WhatsApp...")
		if err := whatsappService.Connect(); err != nil {
			fmt.Printf("Error connecting to WhatsApp: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("\n✅ Connected to WhatsApp! Participant replies are routed automatically.")
	}

	go startCLI(engine)

	// Wait for interrupt signal
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	fmt.Println("\n\nShutting down...")
	if whatsappService != nil {
		whatsappService.Disconnect()
	}
	fmt.Println("Goodbye! 👋")
}

func openStore(cfg *config.Config) (storage.Store, error) {
	if cfg.Storage == "json" {
		return storage.NewFileStore(fmt.Sprintf("%s/planner.json", cfg.DataDir))
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return storage.OpenSQLite(fmt.Sprintf("%s/planner.db", cfg.DataDir))
}

func startCLI(engine *planner.Engine) {
	scanner := bufio.NewScanner(os.Stdin)
	ctx := context.Background()

	for {
		fmt.Println("\nCommands:")
		fmt.Println("   1. Create planning session")
		fmt.Println("   2. Start outreach")
		fmt.Println("   3. Set communication preference")
		fmt.Println("   4. Record question response")
		fmt.Println("   5. Record continuation reply")
		fmt.Println("   6. Mark participant complete")
		fmt.Println("   7. Session status")
		fmt.Println("   8. Generate plan")
		fmt.Println("   9. Record organizer decision")
		fmt.Println("  10. Record participant feedback")
		fmt.Println("  11. Revise plan")
		fmt.Println("  12. Finalize plan")
		fmt.Println("  13. List canonical questions")
		fmt.Println("  14. Exit")
		fmt.Print("\nEnter command (1-14): ")

		if !scanner.Scan() {
			break
		}

		switch strings.TrimSpace(scanner.Text()) {
		case "1":
			createSession(ctx, scanner, engine)
		case "2":
			if id, ok := prompt(scanner, "Session id: "); ok {
				report(engine.StartOutreach(ctx, id), "Outreach started")
			}
		case "3":
			setPreference(ctx, scanner, engine)
		case "4":
			recordResponse(ctx, scanner, engine)
		case "5":
			recordContinuation(ctx, scanner, engine)
		case "6":
			if id, ok := prompt(scanner, "Participant id: "); ok {
				report(engine.MarkComplete(ctx, id), "Participant marked complete")
			}
		case "7":
			showStatus(ctx, scanner, engine)
		case "8":
			generatePlan(ctx, scanner, engine)
		case "9":
			organizerDecision(ctx, scanner, engine)
		case "10":
			participantFeedback(ctx, scanner, engine)
		case "11":
			revisePlan(ctx, scanner, engine)
		case "12":
			if id, ok := prompt(scanner, "Plan id: "); ok {
				report(engine.Finalize(ctx, id), "Plan finalized")
			}
		case "13":
			listQuestions(engine)
		case "14":
			fmt.Println("Exiting...")
			os.Exit(0)
		default:
			fmt.Println("Invalid command. Please try again.")
		}
	}
}

func prompt(scanner *bufio.Scanner, label string) (string, bool) {
	fmt.Print(label)
	if !scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(scanner.Text()), true
}

func report(err error, success string) {
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return
	}
	fmt.Printf("✅ %s\n", success)
}

func createSession(ctx context.Context, scanner *bufio.Scanner, engine *planner.Engine) {
	req := planner.CreateSessionRequest{}
	var ok bool
	if req.OrganizerName, ok = prompt(scanner, "Organizer name: "); !ok {
		return
	}
	if req.OrganizerContact, ok = prompt(scanner, "Organizer contact (phone or email): "); !ok {
		return
	}
	if req.EventName, ok = prompt(scanner, "Event name: "); !ok {
		return
	}

	for {
		name, ok := prompt(scanner, "Participant name (empty to finish): ")
		if !ok || name == "" {
			break
		}
		contact, ok := prompt(scanner, "Participant contact: ")
		if !ok {
			return
		}
		req.Participants = append(req.Participants, planner.NewParticipant{Name: name, Contact: contact})
	}

	id, err := engine.CreateSession(ctx, req)
	if err != nil {
		fmt.Printf("❌ Error creating session: %v\n", err)
		return
	}
	fmt.Printf("✅ Session created: %s\n", id)
}

func setPreference(ctx context.Context, scanner *bufio.Scanner, engine *planner.Engine) {
	id, ok := prompt(scanner, "Participant id: ")
	if !ok {
		return
	}
	response, ok := prompt(scanner, "Preference reply (1/text, 2/email, 3/phone): ")
	if !ok {
		return
	}
	report(engine.SetPreferredMethod(ctx, id, response), "Communication preference set")
}

func recordResponse(ctx context.Context, scanner *bufio.Scanner, engine *planner.Engine) {
	id, ok := prompt(scanner, "Participant id: ")
	if !ok {
		return
	}
	questionID, ok := prompt(scanner, "Question id: ")
	if !ok {
		return
	}
	text, ok := prompt(scanner, "Response: ")
	if !ok {
		return
	}
	report(engine.RecordResponse(ctx, id, questionID, text), "Response recorded")
}

func recordContinuation(ctx context.Context, scanner *bufio.Scanner, engine *planner.Engine) {
	id, ok := prompt(scanner, "Participant id: ")
	if !ok {
		return
	}
	response, ok := prompt(scanner, "Continuation reply: ")
	if !ok {
		return
	}
	report(engine.RecordContinuationDecision(ctx, id, response), "Continuation decision recorded")
}

func showStatus(ctx context.Context, scanner *bufio.Scanner, engine *planner.Engine) {
	id, ok := prompt(scanner, "Session id: ")
	if !ok {
		return
	}
	status, err := engine.Status(ctx, id)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return
	}

	fmt.Printf("\n📋 %s (organized by %s)\n", status.EventName, status.OrganizerName)
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("Participants: %d total, %d complete, %d pending (%.0f%%)\n",
		status.Total, status.Completed, status.Pending, status.CompletePercentage)
	for _, p := range status.Participants {
		method := string(p.PreferredMethod)
		if method == "" {
			method = "unset"
		}
		fmt.Printf("  - %s: %s (method: %s)\n", p.Name, p.Status, method)
	}
	if !status.Plan.HasPlan {
		fmt.Println("No plan generated yet.")
		return
	}
	latest := status.Plan.Latest
	fmt.Printf("Plan v%d [%s] id=%s approved=%t\n", latest.Version, latest.Status, latest.ID, status.Plan.IsApproved)
	fmt.Printf("  %s at %s, %s\n", latest.Date, latest.Time, latest.Location)
}

func generatePlan(ctx context.Context, scanner *bufio.Scanner, engine *planner.Engine) {
	id, ok := prompt(scanner, "Session id: ")
	if !ok {
		return
	}
	plan, err := engine.Generate(ctx, id)
	if err != nil {
		fmt.Printf("❌ Error generating plan: %v\n", err)
		return
	}
	fmt.Printf("✅ Plan v%d generated: %s\n", plan.Version, plan.ID)
}

func organizerDecision(ctx context.Context, scanner *bufio.Scanner, engine *planner.Engine) {
	id, ok := prompt(scanner, "Plan id: ")
	if !ok {
		return
	}
	decision, ok := prompt(scanner, "Approve? (y/n): ")
	if !ok {
		return
	}
	feedback, ok := prompt(scanner, "Feedback (optional): ")
	if !ok {
		return
	}
	approved := strings.HasPrefix(strings.ToLower(decision), "y")
	report(engine.RecordOrganizerDecision(ctx, id, approved, feedback), "Organizer decision recorded")
}

func participantFeedback(ctx context.Context, scanner *bufio.Scanner, engine *planner.Engine) {
	planID, ok := prompt(scanner, "Plan id: ")
	if !ok {
		return
	}
	participantID, ok := prompt(scanner, "Participant id: ")
	if !ok {
		return
	}
	decision, ok := prompt(scanner, "Accepted? (y/n): ")
	if !ok {
		return
	}
	feedback, ok := prompt(scanner, "Feedback (optional): ")
	if !ok {
		return
	}
	accepted := strings.HasPrefix(strings.ToLower(decision), "y")
	report(engine.RecordParticipantFeedback(ctx, planID, participantID, accepted, feedback), "Participant feedback recorded")
}

func revisePlan(ctx context.Context, scanner *bufio.Scanner, engine *planner.Engine) {
	planID, ok := prompt(scanner, "Plan id: ")
	if !ok {
		return
	}
	feedback, ok := prompt(scanner, "Feedback to incorporate: ")
	if !ok {
		return
	}
	participantID, ok := prompt(scanner, "Participant id (optional): ")
	if !ok {
		return
	}
	plan, err := engine.Revise(ctx, planID, feedback, participantID)
	if err != nil {
		fmt.Printf("❌ Error revising plan: %v\n", err)
		return
	}
	fmt.Printf("✅ Plan v%d created: %s\n", plan.Version, plan.ID)
}

func listQuestions(engine *planner.Engine) {
	fmt.Println("\n📝 Canonical questions:")
	for _, q := range engine.Questions().All() {
		fmt.Printf("  %s: %s\n", q.ID, q.Text)
	}
}
