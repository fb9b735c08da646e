// Package schema provides JSON Schema definition and validation utilities
// for describing tool parameters.
//
// Schemas are defined using composable helper functions:
//
//	params := schema.Object(map[string]schema.JSON{
//		"to":     schema.StringWithDesc("Recipient address (0x-prefixed hex)"),
//		"amount": schema.NumberWithDesc("Amount in ether"),
//	}, "to", "amount")
//
// Validation checks types, required fields, enums, string length and
// pattern constraints, and numeric ranges:
//
//	if err := params.Validate(input); err != nil {
//		// input does not conform
//	}
package schema
