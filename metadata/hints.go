package metadata

import "net/http"

// ClientHints collects the sec-ch-ua family of headers when any are present.
type ClientHints struct {
	UA                string `json:"ua,omitempty"`
	UAMobile          string `json:"ua_mobile,omitempty"`
	UAPlatform        string `json:"ua_platform,omitempty"`
	UAArch            string `json:"ua_arch,omitempty"`
	UAPlatformVersion string `json:"ua_platform_version,omitempty"`
	UAModel           string `json:"ua_model,omitempty"`
	UABitness         string `json:"ua_bitness,omitempty"`
	UAWoW64           string `json:"ua_wow64,omitempty"`
	UAFullVersionList string `json:"ua_full_version_list,omitempty"`
}

func clientHintsFromHeaders(h http.Header) *ClientHints {
	hints := ClientHints{
		UA:                h.Get("sec-ch-ua"),
		UAMobile:          h.Get("sec-ch-ua-mobile"),
		UAPlatform:        h.Get("sec-ch-ua-platform"),
		UAArch:            h.Get("sec-ch-ua-arch"),
		UAPlatformVersion: h.Get("sec-ch-ua-platform-version"),
		UAModel:           h.Get("sec-ch-ua-model"),
		UABitness:         h.Get("sec-ch-ua-bitness"),
		UAWoW64:           h.Get("sec-ch-ua-wow64"),
		UAFullVersionList: h.Get("sec-ch-ua-full-version-list"),
	}
	if hints == (ClientHints{}) {
		return nil
	}
	return &hints
}
