package docx

import (
	"fmt"
	"time"
)

var romanMonths = [12]string{"I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X", "XI", "XII"}

// RomanMonth maps a calendar month (1-12) to its uppercase Roman numeral.
// Out-of-range input yields "I" rather than failing; document numbering
// tolerates a bad month.
func RomanMonth(month int) string {
	if month < 1 || month > 12 {
		return "I"
	}
	return romanMonths[month-1]
}

var bulanIndonesia = [12]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

var hariIndonesia = [7]string{
	"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu",
}

// FormatTanggal renders a date in the long Indonesian convention,
// e.g. "10 Januari 2025".
func FormatTanggal(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), bulanIndonesia[int(t.Month())-1], t.Year())
}

// FormatHariTanggal prefixes the weekday, e.g. "Jumat, 10 Januari 2025".
func FormatHariTanggal(t time.Time) string {
	return fmt.Sprintf("%s, %s", hariIndonesia[int(t.Weekday())], FormatTanggal(t))
}

// FormatRentang joins an assignment date range with " s/d ". When only one
// side is present that side alone is returned.
func FormatRentang(mulai, selesai *time.Time) string {
	mulaiFormatted := ""
	if mulai != nil {
		mulaiFormatted = FormatHariTanggal(*mulai)
	}
	selesaiFormatted := ""
	if selesai != nil {
		selesaiFormatted = FormatHariTanggal(*selesai)
	}
	if mulaiFormatted != "" && selesaiFormatted != "" {
		return mulaiFormatted + " s/d " + selesaiFormatted
	}
	if mulaiFormatted != "" {
		return mulaiFormatted
	}
	return selesaiFormatted
}
