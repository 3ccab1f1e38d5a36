package java

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPom_Parse(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pom.xml", `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <groupId>com.example</groupId>
  <artifactId>app</artifactId>
  <version>1.0.0</version>
  <packaging>jar</packaging>
  <properties>
    <spring.version>6.0.9</spring.version>
  </properties>
  <dependencies>
    <dependency>
      <groupId>org.springframework</groupId>
      <artifactId>spring-core</artifactId>
      <version>${spring.version}</version>
    </dependency>
    <dependency>
      <groupId>com.google.guava</groupId>
      <artifactId>guava</artifactId>
      <version>31.1-jre</version>
    </dependency>
    <dependency>
      <groupId>junit</groupId>
      <artifactId>junit</artifactId>
      <version>4.13.2</version>
      <scope>test</scope>
    </dependency>
    <dependency>
      <groupId>jakarta.servlet</groupId>
      <artifactId>jakarta.servlet-api</artifactId>
      <scope>provided</scope>
    </dependency>
  </dependencies>
</project>`)

	result, err := (Pom{}).Parse(path)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if result.Metadata["name"] != "com.example:app" {
		t.Errorf("metadata[name] = %v", result.Metadata["name"])
	}
	if result.Dependencies["org.springframework:spring-core"] != "6.0.9" {
		t.Errorf("spring-core = %q, want property-resolved 6.0.9",
			result.Dependencies["org.springframework:spring-core"])
	}
	if result.Dependencies["com.google.guava:guava"] != "31.1-jre" {
		t.Errorf("guava = %q", result.Dependencies["com.google.guava:guava"])
	}
	if result.DevDependencies["junit:junit"] != "4.13.2" {
		t.Errorf("test scope should land in dev: %v", result.DevDependencies)
	}
	if result.DevDependencies["jakarta.servlet:jakarta.servlet-api"] != "latest" {
		t.Errorf("provided scope without version = %q, want latest",
			result.DevDependencies["jakarta.servlet:jakarta.servlet-api"])
	}
}

func TestPom_ParentAndManaged(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pom.xml", `<?xml version="1.0"?>
<project>
  <parent>
    <groupId>com.example</groupId>
    <artifactId>parent</artifactId>
    <version>2.0.0</version>
  </parent>
  <artifactId>child</artifactId>
  <dependencyManagement>
    <dependencies>
      <dependency>
        <groupId>org.slf4j</groupId>
        <artifactId>slf4j-api</artifactId>
        <version>2.0.7</version>
      </dependency>
    </dependencies>
  </dependencyManagement>
  <dependencies>
    <dependency>
      <groupId>com.example</groupId>
      <artifactId>lib</artifactId>
      <version>${project.version}</version>
    </dependency>
  </dependencies>
</project>`)

	result, err := (Pom{}).Parse(path)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if result.Metadata["name"] != "com.example:child" {
		t.Errorf("metadata[name] = %v, want group inherited from parent", result.Metadata["name"])
	}
	if result.Metadata["parent"] != "com.example:parent" {
		t.Errorf("metadata[parent] = %v", result.Metadata["parent"])
	}
	if result.Metadata["managed_dependencies"] != 1 {
		t.Errorf("managed_dependencies = %v, want 1", result.Metadata["managed_dependencies"])
	}
	if result.Dependencies["com.example:lib"] != "2.0.0" {
		t.Errorf("project.version should resolve via parent: %q", result.Dependencies["com.example:lib"])
	}
	if _, ok := result.Dependencies["org.slf4j:slf4j-api"]; ok {
		t.Error("managed dependencies must not become dependency entries")
	}
}

func TestPom_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pom.xml", "<project><dependencies>")
	if _, err := (Pom{}).Parse(path); err == nil {
		t.Fatal("expected parse error for malformed XML")
	}
}

func TestGradle_Parse(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "build.gradle", `
buildscript {
    dependencies {
        classpath 'com.android.tools.build:gradle:7.4.2'
    }
}

plugins {
    id 'java'
    id 'org.springframework.boot' version '3.1.0'
}

dependencies {
    implementation 'org.springframework:spring-core:6.0.9'
    api 'com.google.guava:guava:32.0.0'
    implementation group: 'org.apache.commons', name: 'commons-lang3', version: '3.12.0'
    testImplementation 'junit:junit:4.13.2'
    compileOnly 'org.projectlombok:lombok:1.18.28'
}
`)

	result, err := (Gradle{}).Parse(path)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if result.Dependencies["org.springframework:spring-core"] != "6.0.9" {
		t.Errorf("spring-core = %q", result.Dependencies["org.springframework:spring-core"])
	}
	if result.Dependencies["com.google.guava:guava"] != "32.0.0" {
		t.Errorf("guava = %q", result.Dependencies["com.google.guava:guava"])
	}
	if result.Dependencies["org.apache.commons:commons-lang3"] != "3.12.0" {
		t.Errorf("map format = %q", result.Dependencies["org.apache.commons:commons-lang3"])
	}
	if result.DevDependencies["junit:junit"] != "4.13.2" {
		t.Errorf("testImplementation should land in dev: %v", result.DevDependencies)
	}
	if result.BuildDependencies["com.android.tools.build:gradle"] != "7.4.2" {
		t.Errorf("classpath should land in build: %v", result.BuildDependencies)
	}

	plugins, _ := result.Metadata["plugins"].([]string)
	if len(plugins) != 2 || plugins[1] != "org.springframework.boot:3.1.0" {
		t.Errorf("plugins = %v", plugins)
	}
}

func TestGradle_KotlinDSL(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "build.gradle.kts", `
plugins {
    id("org.jetbrains.kotlin.jvm") version "1.9.0"
}

dependencies {
    implementation("io.ktor:ktor-server-core:2.3.1")
    testImplementation("io.kotest:kotest-runner-junit5")
}
`)

	result, err := (Gradle{}).Parse(path)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if result.Dependencies["io.ktor:ktor-server-core"] != "2.3.1" {
		t.Errorf("ktor = %q", result.Dependencies["io.ktor:ktor-server-core"])
	}
	if result.DevDependencies["io.kotest:kotest-runner-junit5"] != "latest" {
		t.Errorf("versionless coordinate = %q, want latest",
			result.DevDependencies["io.kotest:kotest-runner-junit5"])
	}
}
