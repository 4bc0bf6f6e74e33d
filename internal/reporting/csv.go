package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders the indicator breakdown as CSV string.
func RenderCSV(r *Report) string {
	var sb strings.Builder

	sb.WriteString("address,indicator,value,weight,contribution,degraded,rationale\n")

	for _, ind := range r.Indicators {
		rationale := strings.ReplaceAll(ind.Rationale, ",", ";")
		sb.WriteString(fmt.Sprintf("%s,%s,%.4f,%.4f,%.4f,%t,%s\n",
			r.Address,
			ind.Name,
			ind.Value,
			ind.Weight,
			ind.Contribution,
			ind.Degraded,
			rationale,
		))
	}

	return sb.String()
}
