package pipeline

import "testing"

func TestDetectSwap(t *testing.T) {
	n := NewNormalizer(DefaultRefSets())

	cases := []struct {
		name      string
		firstName string
		lastName  string
		company   string
		email     string
		swapped   bool
		wantFirst string
		wantLast  string
		wantComp  string
	}{
		{
			name:      "department in name, person in company",
			firstName: "Procurement",
			company:   "Jane Smith",
			email:     "jane.smith@acme.com",
			swapped:   true,
			wantFirst: "Jane",
			wantLast:  "Smith",
			wantComp:  "Procurement",
		},
		{
			name:      "initial style local part",
			firstName: "Logistics",
			company:   "Jane Smith",
			email:     "j.smith@acme.com",
			swapped:   true,
			wantFirst: "Jane",
			wantLast:  "Smith",
			wantComp:  "Logistics",
		},
		{
			name:      "three token person name",
			firstName: "Accounting",
			company:   "Mary Ann Smith",
			email:     "mary.annsmith@acme.com",
			swapped:   true,
			wantFirst: "Mary",
			wantLast:  "Ann Smith",
			wantComp:  "Accounting",
		},
		{
			name:      "digits in company token",
			firstName: "Procurement",
			company:   "Jane Smith2",
			email:     "jane.smith@acme.com",
		},
		{
			name:      "company token is keyword",
			firstName: "Jane",
			company:   "Acme Solutions",
			email:     "jane.smith@acme.com",
		},
		{
			name:      "single token company",
			firstName: "Procurement",
			company:   "Acme",
			email:     "jane.smith@acme.com",
		},
		{
			name:      "email does not match company name",
			firstName: "Procurement",
			company:   "Jane Smith",
			email:     "bob.jones@acme.com",
		},
		{
			name:      "original name already matches email so no swap",
			firstName: "Jane",
			lastName:  "Smith",
			company:   "Jane Smith",
			email:     "jane.smith@acme.com",
		},
		{
			name:      "missing company",
			firstName: "Procurement",
			email:     "jane.smith@acme.com",
		},
		{
			name:    "missing first name",
			company: "Jane Smith",
			email:   "jane.smith@acme.com",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := n.DetectSwap(tc.firstName, tc.lastName, tc.company, tc.email)
			if res.Swapped != tc.swapped {
				t.Fatalf("swapped=%v want %v", res.Swapped, tc.swapped)
			}
			if !tc.swapped {
				return
			}
			if res.FirstName != tc.wantFirst || res.LastName != tc.wantLast || res.Company != tc.wantComp {
				t.Fatalf("got (%q, %q, %q) want (%q, %q, %q)",
					res.FirstName, res.LastName, res.Company,
					tc.wantFirst, tc.wantLast, tc.wantComp)
			}
		})
	}
}

func TestLocalMatchesName(t *testing.T) {
	cases := []struct {
		local string
		fn    string
		ln    string
		want  bool
	}{
		{local: "jane.smith", fn: "jane", ln: "smith", want: true},
		{local: "jane_smith", fn: "jane", ln: "smith", want: true},
		{local: "janesmith", fn: "jane", ln: "smith", want: true},
		{local: "j.smith", fn: "jane", ln: "smith", want: true},
		{local: "jane.s", fn: "jane", ln: "smith", want: true},
		{local: "j.a-n.e_smith", fn: "jane", ln: "smith", want: true},
		{local: "bob.jones", fn: "jane", ln: "smith", want: false},
		{local: "smith.jane", fn: "jane", ln: "smith", want: false},
	}

	for _, tc := range cases {
		if got := localMatchesName(tc.local, tc.fn, tc.ln); got != tc.want {
			t.Fatalf("localMatchesName(%q, %q, %q)=%v want %v", tc.local, tc.fn, tc.ln, got, tc.want)
		}
	}
}
