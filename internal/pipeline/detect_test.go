package pipeline

import "testing"

func TestDetectLeadList(t *testing.T) {
	cases := []struct {
		name        string
		subject     string
		text        string
		html        string
		attachments []string
		want        bool
	}{
		{
			name:        "subject keyword plus xlsx attachment",
			subject:     "March leads for outreach",
			attachments: []string{"leads.xlsx"},
			want:        true,
		},
		{
			name:    "html table with prospect mention",
			subject: "New prospects",
			html:    "<html><body><table><tr><td>jane@acme.com</td></tr></table></body></html>",
			want:    true,
		},
		{
			name:    "body full of email addresses",
			subject: "Contacts",
			text:    "Leads below: jane@acme.com bob@widgets.io kim@nord.co alex@misc.org",
			want:    true,
		},
		{
			name:    "ordinary correspondence",
			subject: "Re: meeting on Thursday",
			text:    "See you at 10, bring the slides.",
			want:    false,
		},
		{
			name:        "invoice with pdf attachment only",
			subject:     "Invoice 4411",
			text:        "Please find the invoice attached.",
			attachments: []string{"invoice-4411.pdf"},
			want:        false,
		},
		{
			name: "empty message",
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := DetectLeadList(tc.subject, tc.text, tc.html, tc.attachments)
			if res.IsLeadList != tc.want {
				t.Fatalf("IsLeadList=%v (score=%.2f) want %v", res.IsLeadList, res.Score, tc.want)
			}
			wantReason := "rules_negative"
			if tc.want {
				wantReason = "rules_positive"
			}
			if res.Reason != wantReason {
				t.Fatalf("reason=%q", res.Reason)
			}
		})
	}
}
