// archive_test.go
package archive

import (
	"bytes"
	"strings"
	"testing"
)

const sep = "~~~~~~~~~~~~~~~~~~~~~~~~~~~"

func Test_Archive_Round_Trip(t *testing.T) {
	in := []Record{
		{Category: "Personal", Secret: true, Places: 4, StripZeros: false,
			Text: "width w: 4\narea = w**2"},
		{Category: "Work", Places: 2, StripZeros: true, Text: "x: 1"},
	}
	var buf bytes.Buffer
	if err := Write(&buf, in); err != nil {
		t.Fatal(err)
	}
	out, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(in) {
		t.Fatalf("records: want %d, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("record %d:\nwant %+v\ngot  %+v", i, in[i], out[i])
		}
	}
}

func Test_Archive_Write_Form(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, []Record{{Category: "Math", Places: 2, StripZeros: true, Text: "a: 1"}})
	if err != nil {
		t.Fatal(err)
	}
	want := "Category = \"Math\"; Secret = 0\n" +
		"Places = 2; StripZeros = 1\n" +
		"a: 1\n" +
		sep + "\n"
	if buf.String() != want {
		t.Fatalf("output:\nwant %q\ngot  %q", want, buf.String())
	}
}

func Test_Archive_Missing_Headers_Defaults(t *testing.T) {
	in := "x: 1\ny: 2\n" + sep + "\n"
	recs, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("records: %d", len(recs))
	}
	r := recs[0]
	if r.Category != DefaultCategory || r.Secret || r.Places != 14 || !r.StripZeros {
		t.Fatalf("defaults: %+v", r)
	}
	if r.Text != "x: 1\ny: 2" {
		t.Fatalf("text: %q", r.Text)
	}
}

func Test_Archive_Places_Header_Only(t *testing.T) {
	in := "Places = 6; StripZeros = 0\nx: 1\n" + sep + "\n"
	recs, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	r := recs[0]
	if r.Category != DefaultCategory || r.Places != 6 || r.StripZeros {
		t.Fatalf("got %+v", r)
	}
}

func Test_Archive_EOF_Ends_Last_Record(t *testing.T) {
	in := "Category = \"Notes\"; Secret = 0\nPlaces = 2; StripZeros = 1\nx: 1"
	recs, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Text != "x: 1" || recs[0].Category != "Notes" {
		t.Fatalf("got %+v", recs)
	}
}

func Test_Archive_Blank_Lines_Between_Records(t *testing.T) {
	in := "x: 1\n" + sep + "\n\n\ny: 2\n" + sep + "\n\n"
	recs, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 || recs[0].Text != "x: 1" || recs[1].Text != "y: 2" {
		t.Fatalf("got %+v", recs)
	}
}

func Test_Archive_Blank_Lines_Inside_Text_Kept(t *testing.T) {
	in := "x: 1\n\ny: 2\n" + sep + "\n"
	recs, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Text != "x: 1\n\ny: 2" {
		t.Fatalf("got %+v", recs)
	}
}

func Test_Archive_Category_Capped(t *testing.T) {
	long := strings.Repeat("c", 20)
	in := "Category = \"" + long + "\"; Secret = 1\nx: 1\n" + sep + "\n"
	recs, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	r := recs[0]
	if r.Category != strings.Repeat("c", 15) || !r.Secret {
		t.Fatalf("got %+v", r)
	}

	var buf bytes.Buffer
	if err := Write(&buf, []Record{{Category: long, Places: 2, Text: "x: 1"}}); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "Category = \""+strings.Repeat("c", 15)+"\";") {
		t.Fatalf("written header: %q", buf.String())
	}
}

func Test_Archive_CRLF_Input(t *testing.T) {
	in := "Places = 3; StripZeros = 1\r\nx: 1\r\n" + sep + "\r\n"
	recs, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if recs[0].Places != 3 || recs[0].Text != "x: 1" {
		t.Fatalf("got %+v", recs[0])
	}
}

func Test_Archive_Malformed_Header_Is_Text(t *testing.T) {
	in := "Category: oops\nx: 1\n" + sep + "\n"
	recs, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	r := recs[0]
	if r.Category != DefaultCategory || r.Text != "Category: oops\nx: 1" {
		t.Fatalf("got %+v", r)
	}
}
