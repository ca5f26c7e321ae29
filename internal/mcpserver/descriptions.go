package mcpserver

// Tool descriptions carry interpretation guidance for the calling model.

func describeUnusedDefaults() string {
	return `Finds default parameter values in a Python codebase that no caller relies on.
A default is reported (code SLOP010) when every call site matching the function
name passes that argument explicitly, by position or by keyword.

USE WHEN:
- Simplifying function signatures during cleanup
- Reviewing generated code for speculative parameters
- Checking whether a default can be removed or made required

INTERPRETING RESULTS:
- call_sites is how many calls matched the function name; all of them pass the argument
- A default with many call sites is a strong candidate for removal
- Calls are matched by simple name only, so methods sharing a name pool their call sites
- Calls using *args or **kwargs make a function indeterminate and it is never reported
- Constructors are not matched through class calls; Foo(...) does not count for __init__
- Functions with no matching call sites are never reported

METRICS RETURNED:
- Issues: code, function, param, default, call_sites, file, line, column, message
- Ordered by file, line, column, then parameter position`
}
