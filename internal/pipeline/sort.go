package pipeline

import (
	"sort"

	"github.com/peachstatelabs/gabills/internal/models"
)

// Sort orders bills in place by the requested mode. Unknown modes leave
// the order untouched. All modes are stable: equal keys keep their
// original relative order.
//
// The date modes key off the raw last history entry (Bill.LastActionDate).
// The bill-number modes compare the alphabetic prefix lexically and break
// ties on the numeric suffix; bill-desc reverses both keys independently,
// so mixed types come out in reversed-prefix blocks ("SB" before "HB")
// rather than as a simple reversal of bill-asc.
func Sort(bills []models.Bill, mode string) {
	switch mode {
	case SortDateDesc:
		sort.SliceStable(bills, func(i, j int) bool {
			return bills[j].LastActionDate().Before(bills[i].LastActionDate())
		})
	case SortDateAsc:
		sort.SliceStable(bills, func(i, j int) bool {
			return bills[i].LastActionDate().Before(bills[j].LastActionDate())
		})
	case SortBillAsc:
		sort.SliceStable(bills, func(i, j int) bool {
			if bills[i].Type() != bills[j].Type() {
				return bills[i].Type() < bills[j].Type()
			}
			return bills[i].Number() < bills[j].Number()
		})
	case SortBillDesc:
		sort.SliceStable(bills, func(i, j int) bool {
			if bills[i].Type() != bills[j].Type() {
				return bills[i].Type() > bills[j].Type()
			}
			return bills[i].Number() > bills[j].Number()
		})
	}
}

// Paginate returns the 1-based page of the given size. Out-of-range pages
// yield an empty slice; bounds clamping is the caller's concern.
func Paginate(bills []models.Bill, page, size int) []models.Bill {
	if page < 1 || size < 1 {
		return nil
	}
	start := (page - 1) * size
	if start >= len(bills) {
		return nil
	}
	end := start + size
	if end > len(bills) {
		end = len(bills)
	}
	return bills[start:end]
}

// TotalPages returns the page count for a collection of the given size.
func TotalPages(total, size int) int {
	if total <= 0 || size < 1 {
		return 0
	}
	return (total + size - 1) / size
}
