// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package sparql

import (
	"fmt"
	"strings"
)

// ClassQuery selects one row per class fact combination. Rows are expanded
// into label, type, definition, parent and deprecation triples.
const ClassQuery = `PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>
PREFIX meta: <http://data.15926.org/meta/>
PREFIX rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#>
PREFIX skos: <http://www.w3.org/2004/02/skos/core#>

SELECT DISTINCT ?id ?label ?type ?definition ?parentId ?deprecationDate
%s
WHERE {
  ?id rdfs:label ?label.
  ?id rdf:type ?type.
  OPTIONAL { ?id skos:definition ?definition. }
  OPTIONAL { ?id meta:valDeprecationDate ?deprecationDate. }
  OPTIONAL { ?id rdfs:subClassOf ?parentId. }
}
ORDER BY ASC(?id)`

// buildQuery returns the query for one page. A custom query is used as is
// apart from the paging clause; graphs only apply to ClassQuery.
func buildQuery(custom string, graphs []string, limit, offset int) string {
	var b strings.Builder
	if custom != "" {
		b.WriteString(strings.TrimSpace(custom))
	} else {
		var from strings.Builder
		for i, g := range graphs {
			if i > 0 {
				from.WriteByte('\n')
			}
			fmt.Fprintf(&from, "FROM <%s>", g)
		}
		fmt.Fprintf(&b, ClassQuery, from.String())
	}
	fmt.Fprintf(&b, "\nLIMIT %d\nOFFSET %d", limit, offset)
	return b.String()
}
