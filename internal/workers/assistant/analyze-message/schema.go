// internal/workers/assistant/analyze-message/schema.go
package analyzemessage

// outputSchema is the JSON contract the worker guarantees to downstream
// stages. The caps mirror the limits the pipeline itself enforces; a
// violation here means a pipeline defect, not bad input.
const outputSchema = `{
  "type": "object",
  "required": ["flags", "allowedFlags", "allowedActions", "messageAnalysis", "telemetry"],
  "properties": {
    "flags": {"type": "array", "items": {"type": "string"}},
    "allowedFlags": {"type": "array", "items": {"type": "string"}},
    "allowedActions": {"type": "array", "items": {"type": "string"}},
    "messageAnalysis": {
      "type": "object",
      "required": [
        "intent", "intentConfidence", "primaryIntent", "route", "entities",
        "needsContext", "missingInfo", "clarifiers", "scores", "inputShape",
        "risk", "changes", "suggestedActions", "actionProposals",
        "retrievalQueries", "wantsArtifact", "hasArtifact"
      ],
      "properties": {
        "intent": {"type": "string"},
        "intentConfidence": {"type": "number", "minimum": 0, "maximum": 1},
        "primaryIntent": {"type": "string"},
        "route": {
          "type": "string",
          "enum": ["respond_only", "retrieve_light", "retrieve_heavy", "ask_clarifying", "handoff_tool"]
        },
        "entities": {
          "type": "array",
          "maxItems": 8,
          "items": {
            "type": "object",
            "required": ["type", "value", "weight"],
            "properties": {
              "type": {"type": "string"},
              "value": {"type": "string"},
              "weight": {"type": "number", "minimum": 0, "maximum": 1}
            }
          }
        },
        "changes": {
          "type": "array",
          "maxItems": 2,
          "items": {
            "type": "object",
            "required": ["field"],
            "properties": {
              "field": {"type": "string"}
            }
          }
        },
        "missingInfo": {"type": "array", "maxItems": 1},
        "clarifiers": {"type": "array", "maxItems": 2},
        "actionProposals": {
          "type": "array",
          "maxItems": 4,
          "items": {
            "type": "object",
            "required": ["name", "args", "weight"],
            "properties": {
              "name": {"type": "string"},
              "args": {"type": "object"},
              "weight": {"type": "number", "minimum": 0, "maximum": 1}
            }
          }
        },
        "retrievalQueries": {"type": "array", "maxItems": 5, "items": {"type": "string"}},
        "wantsArtifact": {"type": "boolean"},
        "hasArtifact": {"type": "boolean"}
      }
    },
    "telemetry": {
      "type": "object",
      "required": ["totalMs"],
      "properties": {
        "totalMs": {"type": "integer", "minimum": 0}
      }
    }
  }
}`
