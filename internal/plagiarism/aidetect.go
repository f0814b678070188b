package plagiarism

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/proctoriq/proctoriq/internal/llm"
	"github.com/proctoriq/proctoriq/internal/models"
)

const (
	triageContentLimit = 1500
	deepContentLimit   = 2000

	triageSystemPrompt = "You are a code authenticity expert. Respond ONLY with valid JSON."
	deepSystemPrompt   = "You are a forensic content authenticity expert detecting AI-generated academic submissions across programming languages, markup, and natural text. Analyze systematically and provide evidence-based conclusions. RESPOND ONLY IN VALID JSON."
)

const triagePromptTemplate = `You are an expert AI content detector analyzing code/text for academic integrity.

CONTENT TO ANALYZE (%s):
` + "```\n%s\n```" + `

TASK: Quick triage - is this obviously AI-generated, obviously human, or uncertain?

AI RED FLAGS: perfect formatting with zero inconsistencies; excessive comments explaining obvious code; generic names (data, result, output, temp, handler); perfect grammar and academic tone throughout; generic vocabulary (comprehensive, multifaceted, numerous); phrases like "It is important to note", "Furthermore", "In conclusion"; every paragraph equal length.

HUMAN PATTERNS: formatting inconsistencies; pragmatic shortcuts and abbreviations; comments explaining WHY not WHAT; typos and grammar slips; contractions and informal language; personal voice and anecdotes; uneven structure.

RESPOND IN JSON:
{"quick_verdict": "ai_generated" | "human_written" | "uncertain", "confidence_level": "high" | "medium" | "low", "initial_confidence": 0-100, "proceed_to_deep_analysis": true/false}`

const deepPromptTemplate = `EXPERT AI-GENERATED CONTENT DETECTION - UNIVERSAL ANALYSIS

CONTENT TO ANALYZE (%s):
` + "```\n%s\n```" + `

Score each category 0-100 (100 = strong AI, 0 = strong human). Works for all languages and natural text.

1. DOCUMENTATION/COMMENTS STYLE (weight 25%%): AI comments on everything in a perfect educational tone explaining WHAT not WHY; humans comment sparsely, informally, with typos and personal voice. For prose: AI has flawless grammar, academic vocabulary and stock transitions; humans use contractions, slips, and anecdotes.

2. STRUCTURE & FORMATTING (weight 20%%): AI is perfectly consistent and textbook-organized with no signs of iteration; humans leave mixed indentation, commented-out code, TODOs, and unevenly polished sections.

3. NAMING & IDENTIFIERS (weight 20%%): AI uses uniformly descriptive generic names; humans mix abbreviations (tmp, idx, res), lazy names, and a style that evolves through the file.

4. ERROR HANDLING & LOGIC (weight 15%%): AI defensively handles every edge case with perfect messages; humans start with the happy path and patch error handling in progressively.

5. COMPLEXITY & APPROACH (weight 10%%): AI over-engineers simple tasks with textbook abstractions; humans write direct pragmatic solutions with some technical debt.

6. PERSONAL STYLE & FINGERPRINT (weight 10%%): AI output is sterile with no recurring personal quirks; humans leave a recognizable fingerprint of repeated habits and shortcuts.

ALSO CHECK copy-paste indicators: wrong capitalization of common methods (.Value, getElementByID), property-name typos (align-item), perfect structure mixed with careless errors, placeholder names never customized, boilerplate comments left unchanged.

RESPOND IN JSON FORMAT:
{
  "detailed_indicators": [{"category": "documentation_style" | "structure_formatting" | "naming_identifiers" | "error_handling" | "complexity" | "personal_style" | "copy_paste_errors", "severity": "critical" | "high" | "medium" | "low", "ai_score": 0-100, "specific_evidence": "exact line, pattern, or error found", "explanation": "why this indicates AI generation"}],
  "human_elements": [{"evidence": "specific pattern found", "explanation": "why this suggests human authorship"}],
  "confidence_breakdown": {"documentation_style": 0-100, "structure_formatting": 0-100, "naming_identifiers": 0-100, "error_handling": 0-100, "complexity": 0-100, "personal_style": 0-100, "overall_weighted": 0-100},
  "is_ai_generated": true/false,
  "confidence": 0-100,
  "ai_tool_signature": "chatgpt" | "copilot" | "claude" | "gemini" | "mixed" | "unknown",
  "verdict": "ai_generated" | "human_written" | "heavily_ai_assisted" | "lightly_ai_assisted",
  "recommendation": "specific action for instructor",
  "alternative_explanations": ["other possible reasons for patterns"],
  "detailed_explanation": "comprehensive 2-3 sentence analysis"
}`

// jsonPayloadRe locates the JSON object in a free-form LLM reply: greedy from
// the first brace to the last, which tolerates prose before and after.
var jsonPayloadRe = regexp.MustCompile(`(?s)\{.*\}`)

func extractJSON(text string) (string, bool) {
	payload := jsonPayloadRe.FindString(text)
	return payload, payload != ""
}

// AIClassifier decides whether content was AI-generated, using the LLM as
// the decision oracle. Stateless apart from its client and thresholds; every
// call is at least one and at most two outbound requests.
type AIClassifier struct {
	client llm.Client
}

func NewAIClassifier(client llm.Client) *AIClassifier {
	return &AIClassifier{client: client}
}

type triageReply struct {
	QuickVerdict      string  `json:"quick_verdict"`
	ConfidenceLevel   string  `json:"confidence_level"`
	InitialConfidence float64 `json:"initial_confidence"`
	ProceedToDeep     bool    `json:"proceed_to_deep_analysis"`
}

type deepIndicator struct {
	Category    string  `json:"category"`
	Severity    string  `json:"severity"`
	AIScore     float64 `json:"ai_score"`
	Evidence    string  `json:"specific_evidence"`
	Explanation string  `json:"explanation"`
}

type deepHumanElement struct {
	Evidence    string `json:"evidence"`
	Explanation string `json:"explanation"`
}

type deepReply struct {
	Indicators     []deepIndicator    `json:"detailed_indicators"`
	HumanElements  []deepHumanElement `json:"human_elements"`
	Breakdown      map[string]float64 `json:"confidence_breakdown"`
	IsAIGenerated  bool               `json:"is_ai_generated"`
	Confidence     float64            `json:"confidence"`
	ToolSignature  string             `json:"ai_tool_signature"`
	Verdict        string             `json:"verdict"`
	Recommendation string             `json:"recommendation"`
	Alternatives   []string           `json:"alternative_explanations"`
	Explanation    string             `json:"detailed_explanation"`
}

// Classify runs the two-stage protocol on one content blob. It never returns
// an error: provider failures and unparseable replies degrade to a
// conservative "assume human" result tagged accordingly, so an outage slows
// nothing downstream.
func (c *AIClassifier) Classify(ctx context.Context, content, language string) models.Classification {
	if c.client == nil {
		return degraded("AI detection unavailable (no API key)")
	}
	if strings.TrimSpace(content) == "" {
		return degraded("empty content, AI detection skipped")
	}

	// Stage 1: cheap triage that can short-circuit obvious cases. Cost
	// control, not correctness: triage failures just mean we go deep.
	triage, triageOK := c.runTriage(ctx, content, language)
	if triageOK && triage.ConfidenceLevel == "high" && !triage.ProceedToDeep {
		verdict := models.VerdictUncertain
		switch triage.QuickVerdict {
		case "ai_generated":
			verdict = models.VerdictAIGenerated
		case "human_written":
			verdict = models.VerdictHumanWritten
		}
		confidence := triage.InitialConfidence
		if confidence == 0 {
			confidence = 85
		}
		log.Debug().Str("verdict", triage.QuickVerdict).Msg("AI triage short-circuit")
		return models.Classification{Result: models.AIClassificationResult{
			IsAIGenerated: verdict == models.VerdictAIGenerated,
			Verdict:       verdict,
			Confidence:    confidence,
			Indicators:    []string{"Quick triage: " + triage.QuickVerdict},
			Explanation:   "High confidence determination from initial analysis",
		}}
	}

	return c.runDeepAnalysis(ctx, content, language)
}

func (c *AIClassifier) runTriage(ctx context.Context, content, language string) (triageReply, bool) {
	prompt := fmt.Sprintf(triagePromptTemplate, language, truncate(content, triageContentLimit))

	text, err := c.client.Complete(ctx, triageSystemPrompt, prompt, llm.Options{
		Temperature: 0.2,
		MaxTokens:   200,
	})
	if err != nil {
		log.Warn().Err(err).Msg("AI triage call failed, proceeding to deep analysis")
		return triageReply{ProceedToDeep: true}, false
	}

	payload, ok := extractJSON(text)
	if !ok {
		return triageReply{QuickVerdict: "uncertain", ProceedToDeep: true}, false
	}
	var reply triageReply
	if err := json.Unmarshal([]byte(payload), &reply); err != nil {
		return triageReply{QuickVerdict: "uncertain", ProceedToDeep: true}, false
	}
	return reply, true
}

func (c *AIClassifier) runDeepAnalysis(ctx context.Context, content, language string) models.Classification {
	prompt := fmt.Sprintf(deepPromptTemplate, language, truncate(content, deepContentLimit))

	text, err := c.client.Complete(ctx, deepSystemPrompt, prompt, llm.Options{
		Temperature: 0.1,
		MaxTokens:   1500,
	})
	if err != nil {
		log.Error().Err(err).Msg("AI deep analysis call failed")
		return degraded(fmt.Sprintf("Analysis error: %v", err))
	}

	payload, ok := extractJSON(text)
	if !ok {
		return keywordFallback(text)
	}
	var reply deepReply
	if err := json.Unmarshal([]byte(payload), &reply); err != nil {
		log.Warn().Err(err).Msg("AI deep analysis returned unparseable JSON")
		return keywordFallback(text)
	}

	result := models.AIClassificationResult{
		IsAIGenerated:  reply.IsAIGenerated,
		Verdict:        normalizeVerdict(reply.Verdict, reply.IsAIGenerated),
		Confidence:     clamp(reply.Confidence, 0, 100),
		CategoryScores: reply.Breakdown,
		ToolSignature:  reply.ToolSignature,
		Explanation:    reply.Explanation,
		Recommendation: reply.Recommendation,
		Alternatives:   reply.Alternatives,
	}
	for _, ind := range reply.Indicators {
		result.Evidence = append(result.Evidence, models.AIEvidence{
			Category:    ind.Category,
			Severity:    models.Severity(ind.Severity),
			Excerpt:     ind.Evidence,
			Explanation: ind.Explanation,
		})
	}
	for _, he := range reply.HumanElements {
		result.HumanSignals = append(result.HumanSignals, models.HumanSignal{
			Excerpt:     he.Evidence,
			Explanation: he.Explanation,
		})
	}
	// compact per-indicator summary for display surfaces
	for i, ind := range reply.Indicators {
		if i == 5 {
			break
		}
		result.Indicators = append(result.Indicators,
			fmt.Sprintf("%s: %s", strings.ToUpper(ind.Severity), truncate(ind.Evidence, 80)))
	}

	return models.Classification{Result: result}
}

// normalizeVerdict maps the LLM's free-text verdict onto the known set. The
// LLM's explicit verdict and confidence are trusted over recomputing from
// the category breakdown, even when the two disagree.
func normalizeVerdict(verdict string, isAI bool) models.Verdict {
	switch models.Verdict(strings.ToLower(strings.TrimSpace(verdict))) {
	case models.VerdictAIGenerated:
		return models.VerdictAIGenerated
	case models.VerdictHumanWritten:
		return models.VerdictHumanWritten
	case models.VerdictHeavilyAIAssisted:
		return models.VerdictHeavilyAIAssisted
	case models.VerdictLightlyAIAssisted:
		return models.VerdictLightlyAIAssisted
	}
	if isAI {
		return models.VerdictAIGenerated
	}
	return models.VerdictUncertain
}

// keywordFallback is the deliberately weak second tier: when the structured
// parse fails, scan the raw reply for an AI call. Confidence pinned at 50.
func keywordFallback(text string) models.Classification {
	lower := strings.ToLower(text)
	isAI := strings.Contains(lower, "ai") && strings.Contains(lower, "generated")

	verdict := models.VerdictUncertain
	if isAI {
		verdict = models.VerdictAIGenerated
	}
	return models.Classification{
		Result: models.AIClassificationResult{
			IsAIGenerated: isAI,
			Verdict:       verdict,
			Confidence:    50,
			Indicators:    []string{"Unable to parse detailed analysis"},
			Explanation:   truncate(text, 300),
		},
		Degraded: true,
		Reason:   "unparseable analysis response, keyword heuristic applied",
	}
}

func degraded(reason string) models.Classification {
	return models.Classification{
		Result: models.AIClassificationResult{
			IsAIGenerated: false,
			Verdict:       models.VerdictHumanWritten,
			Confidence:    0,
			Explanation:   reason,
		},
		Degraded: true,
		Reason:   reason,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
