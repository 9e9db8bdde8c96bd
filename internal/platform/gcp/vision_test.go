package gcp

import (
	"testing"

	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
)

func TestEvaluateSafeSearch(t *testing.T) {
	cases := []struct {
		name    string
		in      *visionpb.SafeSearchAnnotation
		flagged bool
	}{
		{"nil", nil, false},
		{"clean", &visionpb.SafeSearchAnnotation{Adult: visionpb.Likelihood_VERY_UNLIKELY, Violence: visionpb.Likelihood_UNLIKELY}, false},
		{"possible", &visionpb.SafeSearchAnnotation{Adult: visionpb.Likelihood_POSSIBLE}, false},
		{"adult likely", &visionpb.SafeSearchAnnotation{Adult: visionpb.Likelihood_LIKELY}, true},
		{"violence very likely", &visionpb.SafeSearchAnnotation{Violence: visionpb.Likelihood_VERY_LIKELY}, true},
		{"racy only", &visionpb.SafeSearchAnnotation{Racy: visionpb.Likelihood_VERY_LIKELY}, false},
	}
	for _, tc := range cases {
		if got := EvaluateSafeSearch(tc.in).Flagged; got != tc.flagged {
			t.Fatalf("%s: expected flagged=%v, got %v", tc.name, tc.flagged, got)
		}
	}
}
