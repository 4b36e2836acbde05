// Package models defines the persisted records of the club portal.
//
// # Billing
//
//   - User: a payer or a dependent (ParentID points at the guardian)
//   - Invoice: one payer-month, with up to seven fixed line-item slots
//   - Payment: a monetary event applied against one invoice
//   - Template: the HTML of one document kind
//
// # Club memberships
//
//   - Plan: base/couple price and age-bracket rules for dependents
//   - ClubProfile: a membership, its plan code and cached monthly fee
//   - FamilyMember: spouse, child or other dependent on a membership
//
// # Design Principles
//
//  1. Records are plain data; derived values (status, fees) are computed in
//     the billing and pricing packages and only cached here.
//  2. Relationships use ID strings, never pointers.
//  3. Money is decimal.Decimal, dates are calendar.Date (no clock, no zone).
package models
