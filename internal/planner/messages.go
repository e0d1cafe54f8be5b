package planner

import (
	"fmt"
	"strings"

	"group-planner/internal/models"
	"group-planner/internal/notify"
)

func introMessage(participantName, organizerName, eventName string) notify.Message {
	return notify.Message{
		Subject: fmt.Sprintf("Help Plan: %s with %s", eventName, organizerName),
		Body: fmt.Sprintf(
			"Hi %s, %s is planning %s and has asked me (an AI assistant) to help coordinate. "+
				"How would you prefer to answer a few questions about your preferences? "+
				"Reply with: 1 for text, 2 for email, or 3 for a phone call.",
			participantName, organizerName, eventName),
	}
}

func questionMessage(question string) notify.Message {
	return notify.Message{
		Subject: "Quick question about your preferences",
		Body:    question,
	}
}

func continuationPrompt() notify.Message {
	return notify.Message{
		Subject: "A few more questions?",
		Body: "Thank you for your responses so far! Would you be willing to answer " +
			"a few more questions to help plan the perfect event? Reply with YES " +
			"to continue or NO to finish.",
	}
}

func thankYouMessage() notify.Message {
	return notify.Message{
		Subject: "Thank you!",
		Body: "Thank you for sharing your preferences! I'll use this information " +
			"to help create a plan that works for everyone. You'll receive the " +
			"proposed plan once it's ready.",
	}
}

func planForOrganizer(organizerName, eventName string, plan models.Plan) notify.Message {
	return notify.Message{
		Subject: fmt.Sprintf("Proposed Plan for %s", eventName),
		Body: fmt.Sprintf(
			"Hi %s, I've created a proposed plan for %s based on everyone's preferences:\n\n%s\n\n"+
				"Please reply with APPROVE to confirm this plan, or REVISE followed by "+
				"your feedback if you'd like changes.",
			organizerName, eventName, formatPlan(plan)),
	}
}

func planForParticipant(participantName, organizerName, eventName string, plan models.Plan) notify.Message {
	return notify.Message{
		Subject: fmt.Sprintf("Approved Plan for %s", eventName),
		Body: fmt.Sprintf(
			"Hi %s, %s has approved the plan for %s:\n\n%s\n\n"+
				"Please reply with YES if this works for you, or NO followed by "+
				"any concerns if you have issues with this plan.",
			participantName, organizerName, eventName, formatPlan(plan)),
	}
}

func rejectionNotice(organizerName, participantName, eventName, feedback string) notify.Message {
	return notify.Message{
		Subject: fmt.Sprintf("Feedback on Plan for %s", eventName),
		Body: fmt.Sprintf(
			"Hi %s, %s has concerns about the plan for %s.\n\n"+
				"Their feedback: %s\n\n"+
				"Would you like me to create a revised plan? Reply with YES to create a new plan, "+
				"or CONTINUE if you'd like to proceed with the current plan.",
			organizerName, participantName, eventName, feedback),
	}
}

// formatPlan renders a plan as a readable message body
func formatPlan(plan models.Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "PLAN FOR: %s\n", plan.EventName)
	fmt.Fprintf(&b, "DATE: %s\n", plan.Date)
	fmt.Fprintf(&b, "TIME: %s\n", plan.Time)
	fmt.Fprintf(&b, "LOCATION: %s\n", plan.Location)
	fmt.Fprintf(&b, "ACTIVITIES: %s\n", strings.Join(plan.Activities, ", "))

	if plan.Notes != "" {
		fmt.Fprintf(&b, "\nADDITIONAL NOTES:\n%s\n", plan.Notes)
	}

	return b.String()
}
