package metadata

import "strings"

// TraceContext is Google Cloud Trace context parsed from the
// x-cloud-trace-context header (TRACE_ID/SPAN_ID;o=OPTIONS).
type TraceContext struct {
	TraceID   string `json:"trace_id,omitempty"`
	SpanID    string `json:"span_id,omitempty"`
	Sampled   *bool  `json:"sampled,omitempty"`
	ProjectID string `json:"project_id,omitempty"`
	Raw       string `json:"raw,omitempty"`
}

func parseCloudTraceHeader(header, projectID string) *TraceContext {
	trace := &TraceContext{ProjectID: projectID, Raw: header}

	traceID, rest, _ := strings.Cut(header, "/")
	trace.TraceID = traceID
	if rest == "" {
		return trace
	}

	sections := strings.Split(rest, ";")
	trace.SpanID = sections[0]
	for _, section := range sections[1:] {
		flag, ok := strings.CutPrefix(section, "o=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(flag) {
		case "1":
			sampled := true
			trace.Sampled = &sampled
		case "0":
			sampled := false
			trace.Sampled = &sampled
		}
	}
	return trace
}
