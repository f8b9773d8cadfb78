package metadata

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/sam0x17/containerflare/platform"
)

// MetadataHeader carries a complete metadata document from the Worker shim.
const MetadataHeader = "x-containerflare-metadata"

// RequestMetadata mirrors Cloudflare's cf object for Cloudflare Containers,
// extended with Cloud Run deployment and trace details when running there.
type RequestMetadata struct {
	RequestID             string        `json:"request_id,omitempty"`
	Colo                  string        `json:"colo,omitempty"`
	Region                string        `json:"region,omitempty"`
	Country               string        `json:"country,omitempty"`
	ClientIP              string        `json:"client_ip,omitempty"`
	Host                  string        `json:"host,omitempty"`
	Scheme                string        `json:"scheme,omitempty"`
	WorkerName            string        `json:"worker_name,omitempty"`
	ProjectID             string        `json:"project_id,omitempty"`
	CloudRunService       string        `json:"cloud_run_service,omitempty"`
	CloudRunRevision      string        `json:"cloud_run_revision,omitempty"`
	CloudRunConfiguration string        `json:"cloud_run_configuration,omitempty"`
	CloudRunRegion        string        `json:"cloud_run_region,omitempty"`
	TraceContext          *TraceContext `json:"trace_context,omitempty"`
	ForwardedFor          []string      `json:"forwarded_for,omitempty"`
	ForwardedProto        string        `json:"forwarded_proto,omitempty"`
	Forwarded             string        `json:"forwarded,omitempty"`
	UserAgent             string        `json:"user_agent,omitempty"`
	Accept                string        `json:"accept,omitempty"`
	AcceptLanguage        string        `json:"accept_language,omitempty"`
	AcceptEncoding        string        `json:"accept_encoding,omitempty"`
	SecGPC                string        `json:"sec_gpc,omitempty"`
	ClientHints           *ClientHints  `json:"client_hints,omitempty"`
	Method                string        `json:"method"`
	Path                  string        `json:"path"`
	RawURL                string        `json:"raw_url,omitempty"`
}

// FromRequest builds metadata for one inbound request. A shim-supplied
// metadata header overrides everything; otherwise headers plus platform
// defaults apply. The request id falls back to a generated UUID so every
// request can be traced even on bare local runs.
func FromRequest(r *http.Request, p platform.Platform) *RequestMetadata {
	m := fromMetadataHeader(r)
	if m == nil {
		m = fromHeaders(r)
		if cf := p.Cloudflare(); cf != nil {
			m.applyCloudflareDefaults(cf)
		}
		if run := p.CloudRun(); run != nil {
			m.applyCloudRunDefaults(r, run)
		}
	}
	m.rebuildRawURLIfNeeded()
	if m.RequestID == "" {
		m.RequestID = uuid.NewString()
	}
	return m
}

func fromMetadataHeader(r *http.Request) *RequestMetadata {
	raw := r.Header.Get(MetadataHeader)
	if raw == "" {
		return nil
	}
	var m RequestMetadata
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil
	}
	return &m
}

func fromHeaders(r *http.Request) *RequestMetadata {
	h := r.Header

	host := h.Get("x-forwarded-host")
	if host == "" {
		host = r.Host
	}

	clientIP := h.Get("cf-connecting-ip")
	if clientIP == "" {
		clientIP = pickClientIPFromXFF(h.Get("x-forwarded-for"))
	}

	path := r.URL.RequestURI()
	rawURL := r.URL.String()

	forwardedProto := h.Get("x-forwarded-proto")
	scheme := forwardedProto
	if scheme == "" {
		scheme = r.URL.Scheme
	}

	var forwardedFor []string
	for _, part := range strings.Split(h.Get("x-forwarded-for"), ",") {
		if part = strings.TrimSpace(part); part != "" {
			forwardedFor = append(forwardedFor, part)
		}
	}

	return &RequestMetadata{
		RequestID:      h.Get("cf-ray"),
		Colo:           h.Get("cf-colo"),
		Region:         h.Get("cf-region"),
		Country:        h.Get("cf-ipcountry"),
		ClientIP:       clientIP,
		Host:           host,
		Scheme:         scheme,
		ForwardedFor:   forwardedFor,
		ForwardedProto: forwardedProto,
		Forwarded:      h.Get("forwarded"),
		UserAgent:      h.Get("user-agent"),
		Accept:         h.Get("accept"),
		AcceptLanguage: h.Get("accept-language"),
		AcceptEncoding: h.Get("accept-encoding"),
		SecGPC:         h.Get("sec-gpc"),
		ClientHints:    clientHintsFromHeaders(h),
		Method:         r.Method,
		Path:           path,
		RawURL:         rawURL,
	}
}

func (m *RequestMetadata) applyCloudflareDefaults(cf *platform.CloudflarePlatform) {
	if m.WorkerName == "" {
		m.WorkerName = cf.WorkerName
	}
}

func (m *RequestMetadata) applyCloudRunDefaults(r *http.Request, run *platform.CloudRunPlatform) {
	if m.CloudRunService == "" {
		m.CloudRunService = run.Service
	}
	if m.CloudRunRevision == "" {
		m.CloudRunRevision = run.Revision
	}
	if m.CloudRunConfiguration == "" {
		m.CloudRunConfiguration = run.Configuration
	}
	if m.ProjectID == "" {
		m.ProjectID = run.ProjectID
	}
	if m.CloudRunRegion == "" {
		m.CloudRunRegion = run.Region
	}

	if m.CloudRunRegion == "" {
		m.CloudRunRegion = regionFromHost(m.Host)
	}
	if m.ProjectID == "" {
		m.ProjectID = firstNonEmpty(
			os.Getenv("GOOGLE_CLOUD_PROJECT"),
			os.Getenv("GCLOUD_PROJECT"),
			projectFromHost(m.Host),
		)
	}
	if m.Region == "" {
		m.Region = m.CloudRunRegion
	}
	if m.WorkerName == "" {
		m.WorkerName = m.CloudRunService
	}

	if header := r.Header.Get("x-cloud-trace-context"); header != "" {
		trace := parseCloudTraceHeader(header, run.ProjectID)
		if m.RequestID == "" {
			m.RequestID = trace.TraceID
		}
		m.TraceContext = trace
	}
}

// rebuildRawURLIfNeeded rebuilds the raw URL from scheme + host + path when
// only a path was available.
func (m *RequestMetadata) rebuildRawURLIfNeeded() {
	needsRebuild := m.RawURL == "" ||
		strings.HasPrefix(m.RawURL, "/") ||
		!strings.Contains(m.RawURL, "://")
	if needsRebuild && m.Host != "" && m.Scheme != "" {
		m.RawURL = m.Scheme + "://" + m.Host + m.Path
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
