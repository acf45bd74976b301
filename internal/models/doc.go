// Package models defines the core domain models for tripbite.
//
// # Models
//
//   - User: registered traveller with an optional food Preference
//   - Preference: liked/disliked categories and keywords, cannot-eat list, budget
//   - Group: travel party with members, join code, policy flags, trip plan and results
//   - Session: server-side record binding a bearer token to a user
//   - Candidate / ScoredRestaurant: place-search results and their consensus score
//
// # Design Principles
//
//  1. Relationships are ID strings, never pointers between records.
//  2. Invariants that can be checked locally are enforced at construction
//     (NewPreference); invariants that span records are enforced by the repositories.
//  3. Records handed out by stores are copies; mutate freely, write back explicitly.
package models
