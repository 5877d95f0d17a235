package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// CommissionRuleScopeGlobal is the scope value of a rule that
// applies to every listing category.  Category-scoped rules carry
// the category name instead and win over the global rule when both
// are active.
const CommissionRuleScopeGlobal = "GLOBAL"

// CommissionRule holds the parameters splitting a listing base
// price into the amount the guest pays and the amount the host
// receives.  At most one active rule resolves for a given category
// at lookup time: the most specific scope wins, then the most
// recently activated rule.
//
// Fields:
//  ID          - primary key identifier.
//  Scope       - CommissionRuleScopeGlobal or a listing category.
//  HostRate    - fraction of base price charged to the host (>= 0).
//  HostFixed   - fixed fee charged to the host (>= 0).
//  ClientRate  - fraction of base price charged to the guest (>= 0).
//  ClientFixed - fixed fee charged to the guest (>= 0).
//  Active      - whether the rule participates in resolution.
//  ActivatedAt - when the rule was last activated; resolution
//                tie-break within one scope.
//  CreatedAt   - timestamp of creation.
type CommissionRule struct {
    ID          uint64          // commission_rules.id
    Scope       string          // commission_rules.scope
    HostRate    decimal.Decimal // commission_rules.host_rate
    HostFixed   decimal.Decimal // commission_rules.host_fixed
    ClientRate  decimal.Decimal // commission_rules.client_rate
    ClientFixed decimal.Decimal // commission_rules.client_fixed
    Active      bool            // commission_rules.active
    ActivatedAt time.Time       // commission_rules.activated_at
    CreatedAt   time.Time       // commission_rules.created_at
}
