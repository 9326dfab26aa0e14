package domain

import (
	"errors"
	"testing"

	"cloud.google.com/go/civil"
)

func TestParseTransactionDate(t *testing.T) {
	day := civil.Date{Year: 2024, Month: 3, Day: 15}

	tests := []struct {
		input   string
		want    civil.DateTime
		wantErr bool
	}{
		{input: "2024-03-15", want: civil.DateTime{Date: day}},
		{input: "2024-03-15T10:30:00", want: civil.DateTime{Date: day, Time: civil.Time{Hour: 10, Minute: 30}}},
		{input: "2024-03-15T10:30:00.000Z", want: civil.DateTime{Date: day, Time: civil.Time{Hour: 10, Minute: 30}}},
		{input: "2024-03-15 23:59:59", want: civil.DateTime{Date: day, Time: civil.Time{Hour: 23, Minute: 59, Second: 59}}},
		{input: "15.03.2024", want: civil.DateTime{Date: day}},
		{input: "15.03.2024 18:45", want: civil.DateTime{Date: day, Time: civil.Time{Hour: 18, Minute: 45}}},
		{input: "15.03.2024 18:45:10", want: civil.DateTime{Date: day, Time: civil.Time{Hour: 18, Minute: 45, Second: 10}}},
		{input: "15/03/2024 07:05", want: civil.DateTime{Date: day, Time: civil.Time{Hour: 7, Minute: 5}}},
		{input: "2024.03.15", want: civil.DateTime{Date: day}},
		{input: "15/03/2024", want: civil.DateTime{Date: day}},
		{input: "", wantErr: true},
		{input: "ontem", wantErr: true},
		{input: "2024-13-40", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTransactionDate(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDate) {
					t.Fatalf("ParseTransactionDate(%q) error = %v, want ErrInvalidDate", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTransactionDate(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseTransactionDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
