package scoring

import (
	"fmt"
	"strings"

	"github.com/sells-group/leadscore/internal/model"
)

const (
	// Bio truncation limits keep prompts bounded; batches carry many leads
	// so they truncate harder than single-lead prompts.
	batchBioLimit  = 150
	singleBioLimit = 200
)

// batchFormatInstructions is the trailing block of every batch prompt. The
// parser in classify.go depends on the PROSPECT line contract it dictates.
const batchFormatInstructions = `For EACH prospect, classify their purchase intent as:
- HIGH: Perfect fit, likely decision maker, strong need indicated
- MEDIUM: Good fit with some alignment, potential interest
- LOW: Poor fit, unlikely to be interested or able to buy

IMPORTANT: Respond with EXACTLY this format for each prospect:
PROSPECT 1: [HIGH/MEDIUM/LOW] - [brief 1-sentence explanation]
PROSPECT 2: [HIGH/MEDIUM/LOW] - [brief 1-sentence explanation]
(continue for all prospects...)

Do not include any other text or formatting.`

// buildBatchPrompt renders the offer followed by each lead in the batch,
// numbered 1-based to match the expected PROSPECT lines in the reply.
func buildBatchPrompt(leads []model.Lead, offer model.Offer) string {
	var b strings.Builder

	b.WriteString("Analyze these prospects' fit for our offer:\n\n")
	b.WriteString("OFFER:\n")
	b.WriteString(offerSection(offer))
	b.WriteString("\n\nPROSPECTS:\n")

	for i, lead := range leads {
		fmt.Fprintf(&b, "\nPROSPECT %d:\n", i+1)
		writeLeadSection(&b, lead, batchBioLimit)
	}

	b.WriteString("\n")
	b.WriteString(batchFormatInstructions)
	return b.String()
}

// buildSinglePrompt renders a one-lead classification prompt. The reply is
// expected as "[HIGH/MEDIUM/LOW] - [brief explanation]".
func buildSinglePrompt(lead model.Lead, offer model.Offer) string {
	var b strings.Builder

	b.WriteString("Analyze this prospect's fit for our offer:\n\n")
	b.WriteString("OFFER:\n")
	b.WriteString(offerSection(offer))
	b.WriteString("\n\nPROSPECT:\n")
	writeLeadSection(&b, lead, singleBioLimit)
	b.WriteString("\nClassify their purchase intent as HIGH, MEDIUM, or LOW based on role authority, industry fit, and likely need.\n\n")
	b.WriteString("Respond with: [HIGH/MEDIUM/LOW] - [brief explanation]")
	return b.String()
}

func offerSection(offer model.Offer) string {
	return fmt.Sprintf("Product: %s\nValue Props: %s\nIdeal Use Cases: %s",
		orNA(offer.Name),
		joinOrNA(offer.ValueProps),
		joinOrNA(offer.IdealUseCases),
	)
}

func writeLeadSection(b *strings.Builder, lead model.Lead, bioLimit int) {
	bio := lead.LinkedInBio
	if len(bio) > bioLimit {
		bio = bio[:bioLimit]
	}
	fmt.Fprintf(b, "Name: %s\n", orNA(lead.Name))
	fmt.Fprintf(b, "Role: %s\n", orNA(lead.Role))
	fmt.Fprintf(b, "Company: %s\n", orNA(lead.Company))
	fmt.Fprintf(b, "Industry: %s\n", orNA(lead.Industry))
	fmt.Fprintf(b, "Location: %s\n", orNA(lead.Location))
	fmt.Fprintf(b, "LinkedIn Bio: %s\n", orNA(bio))
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func joinOrNA(items []string) string {
	if len(items) == 0 {
		return "N/A"
	}
	return strings.Join(items, ", ")
}
