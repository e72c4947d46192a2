// Package licensekit ties the licensing wizard together: declarative field
// rules, business constraint evaluation, debounced validation caching, and
// step navigation, behind a single per-user Session.
//
// A Flow is the immutable definition of a wizard (its steps, rules and
// business hooks); a Session is one user's run through a flow:
//
//	flow := person.Flow()
//	sess, err := licensekit.NewSession(flow, engine)
//	if err != nil { ... }
//	defer sess.Close()
//
//	result, _ := sess.ValidateStep(ctx, 0, formData, false)
//	if result.Valid {
//	    _ = sess.MarkStepCompleted(0)
//	    _ = sess.SetActiveStep(1)
//	}
//
// Each subsystem stays independently usable through its own package:
// pkg/rules, pkg/eligibility, pkg/validcache, pkg/wizard, pkg/lookup.
// Ready-made flows for the person and application wizards live under
// modules/.
package licensekit
