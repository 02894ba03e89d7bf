// Package schema validates structured documents against JSON Schema.
//
// It wraps github.com/xeipuuv/gojsonschema and reports failures as a flat
// list of field errors, so graph files can be rejected before they are
// converted into domain types.
//
// Basic usage:
//
//	s, err := schema.Compile(schemaJSON)
//	if err != nil {
//	    // invalid schema
//	}
//
//	var doc map[string]any
//	_ = yaml.Unmarshal(data, &doc)
//
//	if err := s.Validate(doc); err != nil {
//	    for _, fe := range schema.ValidationErrors(err) {
//	        fmt.Println(fe)
//	    }
//	}
package schema
