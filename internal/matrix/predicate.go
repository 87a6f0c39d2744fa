package matrix

const (
	AxisPythonVersion      = "python_version_number"
	AxisEnvironmentManager = "environment_manager"
	AxisDependencyFile     = "dependency_file"
	AxisPydataPackages     = "pydata_packages"
)

// CatalogAxes are the axes enumerated from the option catalog, in product order.
var CatalogAxes = []string{AxisEnvironmentManager, AxisDependencyFile, AxisPydataPackages}

// Valid reports whether a combination is a legal template configuration.
//
// Pipenv and Pipfile only make sense together, and environment.yml is only
// understood by conda.
func Valid(c Combination) bool {
	env, _ := c.Get(AxisEnvironmentManager)
	dep, _ := c.Get(AxisDependencyFile)

	if (env == "pipenv") != (dep == "Pipfile") {
		return false
	}
	if dep == "environment.yml" && env != "conda" {
		return false
	}
	return true
}
