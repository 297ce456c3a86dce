package main

import (
	"context"
	"fmt"

	"jsmc-rsvp/internal/logger"

	sdk "github.com/matrixorigin/moi-go-sdk"
)

func initKnowledge(ctx context.Context, client *sdk.RawClient) error {
	knowledges := []sdk.NL2SQLKnowledgeCreateRequest{
		{Type: "glossary", Key: "RSVP", Value: []string{"one row of rsvp_archive: a household's head count for one event"}},
		{Type: "glossary", Key: "confirmation code", Value: []string{"rsvp_archive.rsvp_conf_number, shared by every event a household signed up for in one submission"}},
		{Type: "glossary", Key: "attendance", Value: []string{"rsvp_count plus kids_rsvp_count"}},

		{Type: "synonyms", Key: "adults/guests/head count", Value: []string{"adults attending"}, AssociateTables: []string{"rsvp_archive,rsvp_count"}},
		{Type: "synonyms", Key: "children/kids", Value: []string{"kids attending"}, AssociateTables: []string{"rsvp_archive,kids_rsvp_count"}},
		{Type: "synonyms", Key: "member/family/household", Value: []string{"name given on the RSVP"}, AssociateTables: []string{"rsvp_archive,mem_name"}},
		{Type: "synonyms", Key: "program/festival/celebration", Value: []string{"program name"}, AssociateTables: []string{"rsvp_archive,program_name"}},

		{Type: "logic", Key: "an event is identified by program_name and event_name together", Value: []string{"GROUP BY program_name, event_name"}},
		{Type: "logic", Key: "total attendance of an event sums both adult and kid counts", Value: []string{"SUM(rsvp_count) + SUM(kids_rsvp_count)"}},

		{Type: "case_library", Key: "how many people came to each event last year", Value: []string{"SELECT program_name, event_name, event_date, SUM(rsvp_count) AS adults, SUM(kids_rsvp_count) AS kids FROM rsvp_archive WHERE event_date >= DATE_SUB(CURDATE(), INTERVAL 1 YEAR) GROUP BY program_name, event_name, event_date ORDER BY event_date"}},
		{Type: "case_library", Key: "which households attended the most events", Value: []string{"SELECT mem_name, mem_phone_number, COUNT(*) AS events FROM rsvp_archive GROUP BY mem_name, mem_phone_number ORDER BY events DESC LIMIT 20"}},
	}

	for _, k := range knowledges {
		resp, err := client.CreateKnowledge(ctx, &k)
		if err != nil {
			if isDuplicate(err) {
				logger.Info("knowledge.exists", "type", k.Type, "key", k.Key)
				continue
			}
			return fmt.Errorf("create knowledge %q: %w", k.Key, err)
		}
		logger.Info("knowledge.created", "type", k.Type, "key", k.Key, "id", resp.ID)
	}
	return nil
}
